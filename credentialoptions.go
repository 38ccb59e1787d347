// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// COSE algorithm identifiers from the IANA COSE Algorithms registry.
const (
	COSEAlgES256 = -7   // ECDSA with SHA-256
	COSEAlgES384 = -35  // ECDSA with SHA-384
	COSEAlgES512 = -36  // ECDSA with SHA-512
	COSEAlgPS256 = -37  // RSASSA-PSS with SHA-256
	COSEAlgRS256 = -257 // RSASSA-PKCS1-v1_5 with SHA-256
)

type bufferString []byte

// MarshalJSON implements json.Marshaler interface.  It returns a quoted string of base64 URL encoded bufferString.
func (b bufferString) MarshalJSON() ([]byte, error) {
	s := base64.RawURLEncoding.EncodeToString(b)
	return []byte("\"" + s + "\""), nil
}

// UnmarshalJSON implements json.Unmarshaler interface.  The data is expected to be base64 URL encoded.
func (b *bufferString) UnmarshalJSON(data []byte) (err error) {
	if len(data) < 2 {
		return errors.New("json: illegal data " + string(data))
	}
	if data[0] != '"' {
		return errors.New("json: illegal data at input byte 0")
	}
	if data[len(data)-1] != '"' {
		return errors.New("json: illegal data at input byte " + strconv.Itoa(len(data)-1))
	}
	*b, err = base64.RawURLEncoding.DecodeString(string(data[1 : len(data)-1]))
	return err
}

// PublicKeyCredentialRpEntity represents the Web Authentication structure of the same name,
// as defined in http://w3c.github.io/webauthn/#dictionary-rp-credential-params
type PublicKeyCredentialRpEntity struct {
	Name string `json:"name"`         // Human-palatable identifier, intended only for display.
	ID   string `json:"id,omitempty"` // Relying Party unique identifier (effective domain).
}

// PublicKeyCredentialUserEntity represents the Web Authentication structure of the same name,
// as defined in http://w3c.github.io/webauthn/#dictionary-user-credential-params
type PublicKeyCredentialUserEntity struct {
	Name        string       `json:"name"`        // Human-palatable identifier, intended only for display.
	ID          bufferString `json:"id"`          // User handle, SHOULD NOT include personally identifying information.
	DisplayName string       `json:"displayName"` // Human-palatable name, intended only for display.
}

// PublicKeyCredentialType represents the Web Authentication enumeration of the same name,
// as defined in http://w3c.github.io/webauthn/#enum-credentialType
type PublicKeyCredentialType string

// PublicKeyCredentialType enumeration.
const (
	PublicKeyCredentialTypePublicKey PublicKeyCredentialType = "public-key"
)

// PublicKeyCredentialParameters represents the Web Authentication structure of the same name,
// as defined in http://w3c.github.io/webauthn/#dictionary-credential-params
type PublicKeyCredentialParameters struct {
	Type PublicKeyCredentialType `json:"type"` // Type of credential to be created.
	// Alg identifies a cryptographic algorithm registered in the IANA COSE Algorithm registry.
	Alg int `json:"alg"`
}

// PublicKeyCredentialCreationOptions represents the Web Authentication structure of the same name,
// as defined in http://w3c.github.io/webauthn/#dictionary-makecredentialoptions
// Only the members the registration ceremony issues are modeled.
type PublicKeyCredentialCreationOptions struct {
	RP               PublicKeyCredentialRpEntity     `json:"rp"`               // Relying Party data responsible for the request.
	User             PublicKeyCredentialUserEntity   `json:"user"`             // User data for which the Relying Party is requesting attestation.
	Challenge        bufferString                    `json:"challenge"`        // Challenge for generating new credential's attestation object.
	PubKeyCredParams []PublicKeyCredentialParameters `json:"pubKeyCredParams"` // Desired properties of the credential to be created, most preferred first.
}
