// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

// AuthenticatorData represents the fixed-layout prefix of the authenticator
// data in an attestation object, as defined in
// http://w3c.github.io/webauthn/#sctn-authenticator-data
// Flags, signature counter, and attested credential data are not modeled;
// registration only consults the rpIdHash.
type AuthenticatorData struct {
	Raw      []byte // Complete raw authenticator data content.
	RPIDHash []byte // SHA-256 hash of the RP ID the credential is scoped to.
}

const rpIDHashLength = 32

func parseAuthenticatorData(data []byte) (*AuthenticatorData, error) {
	if len(data) < rpIDHashLength {
		return nil, &UnmarshalSyntaxError{Type: "authenticator data", Msg: "unexpected EOF"}
	}

	authnData := &AuthenticatorData{Raw: data}
	authnData.RPIDHash = make([]byte, rpIDHashLength)
	copy(authnData.RPIDHash, data)
	return authnData, nil
}

// CollectedClientData represents the client-signed descriptor the browser
// produces during a ceremony, as defined in
// http://w3c.github.io/webauthn/#dictionary-client-data
type CollectedClientData struct {
	Type        string `json:"type"`        // "webauthn.create" when creating new credentials.
	Challenge   string `json:"challenge"`   // base64 url encoded challenge provided by the Relying Party.
	Origin      string `json:"origin"`      // Fully qualified origin of the requester.
	CrossOrigin bool   `json:"crossOrigin"` // Whether the ceremony ran in a cross-origin iframe.
}
