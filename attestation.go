// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

import (
	"encoding/base64"

	"github.com/fxamacker/cbor/v2"
)

// AttestationObject is the decoded form of an authenticator's attestation
// response: the attestation statement format identifier and the authenticator
// data. The attestation statement itself is not modeled; registration does
// not verify it.
type AttestationObject struct {
	Fmt       string
	AuthnData *AuthenticatorData
}

// ParseAttestationObject decodes a standard base64 encoded CBOR attestation
// object. Unknown CBOR map entries (such as attStmt) are ignored; missing
// required fields, invalid base64, malformed CBOR, and authenticator data
// shorter than its rpIdHash all return an error, never panic.
func ParseAttestationObject(encoded string) (*AttestationObject, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &UnmarshalBadDataError{Type: "attestation object", Msg: "failed to base64 decode attestation object"}
	}

	type rawAttestationObject struct {
		AuthnData []byte `cbor:"authData"`
		Fmt       string `cbor:"fmt"`
	}
	var raw rawAttestationObject
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, &UnmarshalSyntaxError{Type: "attestation object", Msg: err.Error()}
	}
	if len(raw.AuthnData) == 0 {
		return nil, &UnmarshalMissingFieldError{Type: "attestation object", Field: "authenticator data"}
	}
	if len(raw.Fmt) == 0 {
		return nil, &UnmarshalMissingFieldError{Type: "attestation object", Field: "attestation statement format"}
	}

	authnData, err := parseAuthenticatorData(raw.AuthnData)
	if err != nil {
		return nil, err
	}
	return &AttestationObject{Fmt: raw.Fmt, AuthnData: authnData}, nil
}

// AuthenticatorAttestationResponse carries the client data and the base64
// encoded CBOR attestation object produced by navigator.credentials.create().
type AuthenticatorAttestationResponse struct {
	ClientData        CollectedClientData `json:"clientData"`
	AttestationObject string              `json:"attestationObject"`
}

// PublicKeyCredential is the client's response to a registration challenge,
// as submitted to the complete-registration operation.
type PublicKeyCredential struct {
	// ID is the new credential's identifier. It is retained for a future
	// credential store; registration does not verify it.
	ID       string                           `json:"id"`
	Email    string                           `json:"email"`
	Response AuthenticatorAttestationResponse `json:"response"`
}
