// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

/*
Package passkeyd provides server-side registration of passwordless public-key
credentials for clients enrolling with WebAuthn authenticators, and is
decoupled from `net/http` for easy integration with existing projects.

A client enrolls in two phases. BeginRegistration binds a fresh challenge to
an email identity and returns the ceremony options for
navigator.credentials.create(). FinishRegistration validates the
authenticator's attestation response against the issued challenge, the
configured origin, and the Relying Party identifier.

It uses fxamacker/cbor to decode attestation objects because it doesn't crash
on malformed input and it's the most well-tested CBOR library available.
*/
package passkeyd

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// ceremonyCreate is the client data type for the registration ceremony.
// Assertion responses carry "webauthn.get" and must never register.
const ceremonyCreate = "webauthn.create"

const userHandleLength = 16

// Server runs the registration ceremony against an injected Store.
// It is safe for concurrent use; the only shared state is the Store handle.
type Server struct {
	cfg   *Config
	store Store
}

// NewServer returns a Server for the given Relying Party settings and store.
func NewServer(cfg *Config, store Store) (*Server, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	return &Server{cfg: cfg, store: store}, nil
}

// BeginRegistration mints a challenge for a new identity, persists the
// (identity, challenge) binding, and returns a PublicKeyCredentialCreationOptions
// describing the ceremony. It returns ErrIdentityRegistered when the identity
// already has a user record, and *StoreError when persistence fails.
func (s *Server) BeginRegistration(ctx context.Context, email string) (*PublicKeyCredentialCreationOptions, error) {
	if len(email) == 0 {
		return nil, errors.New("email is required")
	}

	exists, err := s.store.UserExists(ctx, email)
	if err != nil {
		return nil, &StoreError{Op: "look up user", Err: err}
	}
	if exists {
		return nil, ErrIdentityRegistered
	}

	if err := s.store.CreateUser(ctx, email); err != nil {
		// A concurrent registration may win the insert between the existence
		// check and here; the store's uniqueness constraint reports it.
		if errors.Is(err, ErrIdentityRegistered) {
			return nil, err
		}
		return nil, &StoreError{Op: "create user", Err: err}
	}

	challenge := make([]byte, s.cfg.ChallengeLength)
	if _, err := rand.Read(challenge); err != nil {
		return nil, errors.New("failed to generate challenge: " + err.Error())
	}
	if err := s.store.InsertChallenge(ctx, email, base64.RawURLEncoding.EncodeToString(challenge)); err != nil {
		return nil, &StoreError{Op: "insert challenge", Err: err}
	}

	handle := make([]byte, userHandleLength)
	if _, err := rand.Read(handle); err != nil {
		return nil, errors.New("failed to generate user handle: " + err.Error())
	}

	var credentialParams []PublicKeyCredentialParameters
	for _, alg := range s.cfg.CredentialAlgs {
		credentialParams = append(credentialParams, PublicKeyCredentialParameters{PublicKeyCredentialTypePublicKey, alg})
	}

	options := &PublicKeyCredentialCreationOptions{
		RP: PublicKeyCredentialRpEntity{
			Name: s.cfg.RPName,
			ID:   s.cfg.RPID,
		},
		User: PublicKeyCredentialUserEntity{
			Name:        email,
			ID:          handle,
			DisplayName: email,
		},
		Challenge:        challenge,
		PubKeyCredParams: credentialParams,
	}

	return options, nil
}

// FinishRegistration verifies a client's attestation response, as defined in
// http://w3c.github.io/webauthn/#sctn-registering-a-new-credential
//
// The checks run in a fixed, short-circuiting order: client data type,
// challenge binding, origin, rpIdHash. A nil return means the identity is
// registered. Check failures return *VerificationError and decode failures
// return the typed unmarshal errors; both must collapse to a uniform
// rejection at the transport boundary. Store failures return *StoreError and
// must never be treated as a rejection.
//
// The challenge is consumed at match time, even if a later check fails, so a
// captured response can never be replayed.
func (s *Server) FinishRegistration(ctx context.Context, credential *PublicKeyCredential) error {
	if len(credential.Email) == 0 {
		return &VerificationError{Type: "attestation", Field: "email", Msg: "email is required"}
	}
	clientData := &credential.Response.ClientData

	// Verify that the value of C.type is webauthn.create.
	if clientData.Type != ceremonyCreate {
		return &VerificationError{Type: "attestation", Field: "client data type", Msg: "expected \"" + ceremonyCreate + "\", got \"" + clientData.Type + "\""}
	}

	// Verify that C.challenge was issued to this identity and is still
	// unconsumed, and burn it.
	matched, err := s.store.ConsumeChallenge(ctx, credential.Email, clientData.Challenge)
	if err != nil {
		return &StoreError{Op: "consume challenge", Err: err}
	}
	if !matched {
		return &VerificationError{Type: "attestation", Field: "client data challenge", Msg: "challenge was not issued for this identity"}
	}

	// Verify that the value of C.origin matches the Relying Party's origin.
	if clientData.Origin != s.cfg.Origin {
		return &VerificationError{Type: "attestation", Field: "client data origin", Msg: "expected \"" + s.cfg.Origin + "\", got \"" + clientData.Origin + "\""}
	}

	attestationObject, err := ParseAttestationObject(credential.Response.AttestationObject)
	if err != nil {
		return err
	}

	// Verify that the rpIdHash in authData is the SHA-256 hash of the RP ID expected by the Relying Party.
	computedRPIDHash := sha256.Sum256([]byte(s.cfg.RPID))
	if !bytes.Equal(attestationObject.AuthnData.RPIDHash, computedRPIDHash[:]) {
		return &VerificationError{Type: "attestation", Field: "rp ID", Msg: "authenticator data's rp ID hash does not match computed rp ID hash"}
	}

	return nil
}
