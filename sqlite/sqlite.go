// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sqlite implements registration persistence with a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/passkeyd/passkeyd"
)

var schema = `
-- Identities that have started or completed registration.
CREATE TABLE IF NOT EXISTS users (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE
);

-- Issued, unconsumed registration challenges.
CREATE TABLE IF NOT EXISTS user_credential_challenges (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	challenge  TEXT NOT NULL,

	-- Unix microseconds. Rows older than the challenge TTL never match
	-- and are removed by GC.
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS user_credential_challenges_by_user
	ON user_credential_challenges(user_id, challenge);
`

// DefaultChallengeTTL is how long an issued challenge stays consumable.
const DefaultChallengeTTL = 5 * time.Minute

// DB implements passkeyd.Store backed by a SQLite database.
type DB struct {
	db *sql.DB

	// ChallengeTTL overrides DefaultChallengeTTL when positive.
	ChallengeTTL time.Duration

	// An optional test-provided time function.
	now func() time.Time
}

var _ passkeyd.Store = (*DB)(nil)

// Open opens a SQLite database at the given path, applying the schema if
// necessary. Callers are expected to call Close on the returned DB.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	d, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// New applies the schema to an existing database handle and returns a DB
// using it.
func New(ctx context.Context, db *sql.DB) (*DB, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) ttl() time.Duration {
	if d.ChallengeTTL > 0 {
		return d.ChallengeTTL
	}
	return DefaultChallengeTTL
}

// UserExists implements passkeyd.Store.
func (d *DB) UserExists(ctx context.Context, email string) (bool, error) {
	var id int64
	err := d.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying user: %w", err)
	}
	return true, nil
}

// CreateUser implements passkeyd.Store. The UNIQUE constraint on email makes
// the insert race-free: of two concurrent registrations, exactly one gets
// passkeyd.ErrIdentityRegistered.
func (d *DB) CreateUser(ctx context.Context, email string) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO users (email) VALUES (?)`, email)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return passkeyd.ErrIdentityRegistered
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// InsertChallenge implements passkeyd.Store.
func (d *DB) InsertChallenge(ctx context.Context, email, challenge string) error {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO user_credential_challenges (user_id, challenge, created_at)
		SELECT id, ?, ? FROM users WHERE email = ?`,
		challenge, d.now().UnixMicro(), email)
	if err != nil {
		return fmt.Errorf("inserting challenge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting challenge: %w", err)
	}
	if n == 0 {
		return errors.New("inserting challenge: no user row for " + email)
	}
	return nil
}

// ConsumeChallenge implements passkeyd.Store. The DELETE both answers
// "was this challenge issued to this identity" and burns the row in one
// statement, so a challenge matches at most once.
func (d *DB) ConsumeChallenge(ctx context.Context, email, challenge string) (bool, error) {
	cutoff := d.now().Add(-d.ttl()).UnixMicro()
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM user_credential_challenges
		WHERE challenge = ?
		  AND created_at >= ?
		  AND user_id = (SELECT id FROM users WHERE email = ?)`,
		challenge, cutoff, email)
	if err != nil {
		return false, fmt.Errorf("consuming challenge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consuming challenge: %w", err)
	}
	return n > 0, nil
}

// GC removes challenges past their TTL. Expired rows never match a
// verification; GC only keeps the table from growing without bound.
func (d *DB) GC(ctx context.Context) error {
	cutoff := d.now().Add(-d.ttl()).UnixMicro()
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_credential_challenges WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("removing expired challenges: %w", err)
	}
	return nil
}
