// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

import (
	"errors"
	"net/url"
	"strconv"
)

// Config represents Relying Party settings used by the challenge issuer and
// the registration verifier. It is injected at construction so tests can
// exercise multiple origins without process-wide state.
// Zero value Config is not valid.
type Config struct {
	// Origin is the canonical web origin (scheme://host[:port]) the browser
	// must report in client data. Compared byte-for-byte, case-sensitive.
	Origin string

	// RPID is the Relying Party identifier, typically the host portion of
	// Origin. Authenticator data must carry SHA-256(RPID) as its rpIdHash.
	RPID string

	// RPName is a human-palatable Relying Party name, intended only for display.
	RPName string

	// ChallengeLength is the challenge size in bytes before encoding.
	ChallengeLength int

	// CredentialAlgs identifies acceptable credential algorithms from the
	// IANA COSE Algorithms registry, most preferred first.
	CredentialAlgs []int
}

const (
	challengeMinLength = 16
	challengeMaxLength = 64
)

// Valid checks Config settings and returns error if it is invalid.
func (c *Config) Valid() error {
	if c.Origin == "" {
		return errors.New("origin is required")
	}
	if u, err := url.Parse(c.Origin); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("origin " + c.Origin + " is not a valid web origin")
	}
	if c.RPID == "" {
		return errors.New("rp id is required")
	}
	if c.RPName == "" {
		return errors.New("rp name is required")
	}
	if c.ChallengeLength < challengeMinLength {
		return errors.New("challenge must be at least " + strconv.Itoa(challengeMinLength) + " bytes long")
	}
	if c.ChallengeLength > challengeMaxLength {
		return errors.New("challenge must be no more than " + strconv.Itoa(challengeMaxLength) + " bytes long")
	}
	if len(c.CredentialAlgs) == 0 {
		return errors.New("there must be at least one credential algorithm")
	}
	return nil
}
