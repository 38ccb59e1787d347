// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

// Attestation object produced by a platform authenticator for RP ID
// "localhost" with the "none" attestation statement format.
var noneAttestationObject = "o2NmbXRkbm9uZWdhdHRTdG10oGhhdXRoRGF0YVjFSZYN5YgOjGh0NBcPZHZgW4/krrmihjLHmVzzuoMdl2NFAAAAAAAAAAAAAAAAAAAAAAAAAAAAQQEA4wyJikPPpb0YSIMW3D6jT2Du0n0Rnfim3hoiRoMdluSS+aCBBnyK7lu/hfpasycIhsV7Rq/QRVd0MVykiiKOpQECAyYgASFYIF5cREuA9SBROn/KmVkv2KS0fwFDwvZvsmA3zY4JGuP5Ilgge52g+rd/0iPU+OISmTTxctOMgcW24KvRMlqTZbasn4s="

// encodeAttestationObject returns the base64 encoding of a CBOR attestation
// object whose authenticator data starts with SHA-256(rpID).
func encodeAttestationObject(t *testing.T, rpID string, authnDataSuffix []byte) string {
	t.Helper()
	rpIDHash := sha256.Sum256([]byte(rpID))
	authnData := append(rpIDHash[:], authnDataSuffix...)
	raw, err := cbor.Marshal(map[string]interface{}{
		"fmt":      "none",
		"authData": authnData,
		"attStmt":  map[string]interface{}{},
	})
	if err != nil {
		t.Fatalf("failed to marshal attestation object: %q", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestParseAttestationObject(t *testing.T) {
	attestationObject, err := ParseAttestationObject(noneAttestationObject)
	if err != nil {
		t.Fatalf("ParseAttestationObject() returns error %q", err)
	}
	if attestationObject.Fmt != "none" {
		t.Errorf("fmt %q, want %q", attestationObject.Fmt, "none")
	}
	rpIDHash := sha256.Sum256([]byte("localhost"))
	if !bytes.Equal(attestationObject.AuthnData.RPIDHash, rpIDHash[:]) {
		t.Errorf("rp ID hash %02x, want %02x", attestationObject.AuthnData.RPIDHash, rpIDHash[:])
	}
}

func TestParseAttestationObjectRoundTrip(t *testing.T) {
	suffix := []byte{0x41, 0x00, 0x00, 0x00, 0x2a}
	encoded := encodeAttestationObject(t, "example.com", suffix)

	attestationObject, err := ParseAttestationObject(encoded)
	if err != nil {
		t.Fatalf("ParseAttestationObject() returns error %q", err)
	}
	if attestationObject.Fmt != "none" {
		t.Errorf("fmt %q, want %q", attestationObject.Fmt, "none")
	}
	rpIDHash := sha256.Sum256([]byte("example.com"))
	if !bytes.Equal(attestationObject.AuthnData.RPIDHash, rpIDHash[:]) {
		t.Errorf("rp ID hash %02x, want %02x", attestationObject.AuthnData.RPIDHash, rpIDHash[:])
	}
	if want := append(rpIDHash[:], suffix...); !bytes.Equal(attestationObject.AuthnData.Raw, want) {
		t.Errorf("raw authenticator data %02x, want %02x", attestationObject.AuthnData.Raw, want)
	}
}

type parseAttestationErrorTest struct {
	name         string
	encoded      string
	wantErrorMsg string
}

func parseAttestationErrorTests(t *testing.T) []parseAttestationErrorTest {
	t.Helper()

	mustCBOR := func(v interface{}) []byte {
		raw, err := cbor.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal test data: %q", err)
		}
		return raw
	}
	b64 := base64.StdEncoding.EncodeToString

	valid := mustCBOR(map[string]interface{}{
		"fmt":      "none",
		"authData": make([]byte, 37),
	})

	return []parseAttestationErrorTest{
		{
			name:         "invalid base64",
			encoded:      "not-base64!!",
			wantErrorMsg: "failed to base64 decode attestation object",
		},
		{
			name:         "empty input",
			encoded:      "",
			wantErrorMsg: "failed to unmarshal",
		},
		{
			name:         "truncated cbor",
			encoded:      b64(valid[:len(valid)/2]),
			wantErrorMsg: "failed to unmarshal",
		},
		{
			name:         "cbor array instead of map",
			encoded:      b64(mustCBOR([]int{1, 2, 3})),
			wantErrorMsg: "failed to unmarshal",
		},
		{
			name:         "missing authenticator data",
			encoded:      b64(mustCBOR(map[string]interface{}{"fmt": "none"})),
			wantErrorMsg: "missing authenticator data",
		},
		{
			name:         "missing attestation statement format",
			encoded:      b64(mustCBOR(map[string]interface{}{"authData": make([]byte, 37)})),
			wantErrorMsg: "missing attestation statement format",
		},
		{
			name:         "authenticator data shorter than rp id hash",
			encoded:      b64(mustCBOR(map[string]interface{}{"fmt": "none", "authData": make([]byte, 16)})),
			wantErrorMsg: "unexpected EOF",
		},
	}
}

func TestParseAttestationObjectError(t *testing.T) {
	for _, tc := range parseAttestationErrorTests(t) {
		t.Run(tc.name, func(t *testing.T) {
			attestationObject, err := ParseAttestationObject(tc.encoded)
			if err == nil {
				t.Fatalf("ParseAttestationObject() returns no error, want error containing %q", tc.wantErrorMsg)
			}
			if attestationObject != nil {
				t.Errorf("ParseAttestationObject() returns attestation object %v, want nil", attestationObject)
			}
			if !strings.Contains(err.Error(), tc.wantErrorMsg) {
				t.Errorf("ParseAttestationObject() returns error %q, want error containing %q", err, tc.wantErrorMsg)
			}
		})
	}
}

func TestParseAttestationObjectErrorType(t *testing.T) {
	var badDataError *UnmarshalBadDataError
	if _, err := ParseAttestationObject("not-base64!!"); !errors.As(err, &badDataError) {
		t.Errorf("ParseAttestationObject() returns error of type %T, want *UnmarshalBadDataError", err)
	}

	raw, err := cbor.Marshal(map[string]interface{}{"fmt": "none"})
	if err != nil {
		t.Fatalf("failed to marshal test data: %q", err)
	}
	var missingFieldError *UnmarshalMissingFieldError
	if _, err := ParseAttestationObject(base64.StdEncoding.EncodeToString(raw)); !errors.As(err, &missingFieldError) {
		t.Errorf("ParseAttestationObject() returns error of type %T, want *UnmarshalMissingFieldError", err)
	}
}
