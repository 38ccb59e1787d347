// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

import (
	"errors"
	"strings"
)

// ErrIdentityRegistered is returned by BeginRegistration when the identity
// already has a registered user. Stores enforcing identity uniqueness return
// it from CreateUser when a concurrent registration wins the insert.
var ErrIdentityRegistered = errors.New("passkeyd: identity is already registered")

// UnmarshalSyntaxError describes a syntax error resulting from parsing registration data.
type UnmarshalSyntaxError struct {
	Type  string
	Field string
	Msg   string
}

func (e *UnmarshalSyntaxError) Error() string {
	if e.Field == "" {
		return "passkeyd/" + transformType(e.Type) + ": failed to unmarshal: " + e.Msg
	}
	return "passkeyd/" + transformType(e.Type) + ": failed to unmarshal " + e.Field + ": " + e.Msg
}

// UnmarshalMissingFieldError results when a required field is missing.
type UnmarshalMissingFieldError struct {
	Type  string
	Field string
}

func (e *UnmarshalMissingFieldError) Error() string {
	return "passkeyd/" + transformType(e.Type) + ": missing " + e.Field
}

// UnmarshalBadDataError results when invalid data is detected.
type UnmarshalBadDataError struct {
	Type string
	Msg  string
}

func (e *UnmarshalBadDataError) Error() string {
	return "passkeyd/" + transformType(e.Type) + ": " + e.Msg
}

// VerificationError describes a failed check in the registration ceremony.
// Field identifies the failing check for diagnostics; callers facing
// unauthenticated clients must collapse it to a uniform rejection.
type VerificationError struct {
	Type  string
	Field string
	Msg   string
}

func (e *VerificationError) Error() string {
	s := "passkeyd/" + transformType(e.Type) + ": failed to verify " + e.Field
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// StoreError wraps a persistence failure. It is distinct from both
// verification failures and "not found" outcomes so operational faults are
// never mistaken for forgery attempts, or vice versa.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "passkeyd/store: failed to " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func transformType(typ string) string {
	return strings.Replace(strings.ToLower(typ), " ", "_", -1)
}
