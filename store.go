// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package passkeyd

import "context"

// Store is the persistence contract the registration ceremony requires:
// a durable mapping from identity to user, and from issued challenge to the
// identity that requested it. Implementations must be safe for concurrent
// use; the database serializes conflicting writes.
type Store interface {
	// UserExists reports whether a user row exists for email.
	UserExists(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a user row for email. It returns
	// ErrIdentityRegistered when the identity already exists. Uniqueness is
	// enforced by the store itself, so two concurrent registrations for the
	// same identity cannot both insert.
	CreateUser(ctx context.Context, email string) error

	// InsertChallenge records an issued challenge for email.
	InsertChallenge(ctx context.Context, email, challenge string) error

	// ConsumeChallenge atomically removes an unexpired issued challenge
	// bound to email and reports whether one existed. A consumed challenge
	// can never match again.
	ConsumeChallenge(ctx context.Context, email, challenge string) (bool, error)
}
