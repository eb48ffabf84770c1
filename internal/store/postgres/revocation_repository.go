// Copyright 2026 The Upsight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"fmt"
	"time"
)

// RevocationRepository implements token.RevocationList on PostgreSQL, for
// deployments where revocations must survive restarts and be shared across
// instances. Single-instance deployments use the in-memory list instead.
type RevocationRepository struct {
	db *DB
}

// NewRevocationRepository creates a new revocation repository
func NewRevocationRepository(db *DB) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Revoke records a token id until its natural expiry. Revoking an already
// revoked token is a no-op.
func (r *RevocationRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, time.Now().UTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id is on the revocation list. Rows past
// their expiry no longer count; the cleanup job removes them eventually.
func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens
			WHERE jti = $1 AND expires_at > NOW()
		)
	`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}

// DeleteExpired removes revocation rows whose tokens have expired on their
// own. Returns the number of rows removed.
func (r *RevocationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired revocations: %w", err)
	}
	return result.RowsAffected(), nil
}
