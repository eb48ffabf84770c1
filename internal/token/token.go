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

package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAuthentication is the single failure surfaced to callers. The specific
// sentinels below wrap it so that internal logging can distinguish the cause
// while external responses never do.
var ErrAuthentication = errors.New("authentication failed")

var (
	ErrInvalidSignature = fmt.Errorf("%w: invalid token", ErrAuthentication)
	ErrExpired          = fmt.Errorf("%w: token expired", ErrAuthentication)
	ErrRevoked          = fmt.Errorf("%w: token revoked", ErrAuthentication)
	ErrWrongUse         = fmt.Errorf("%w: wrong token use", ErrAuthentication)
)

// Token uses. Access tokens authenticate requests; refresh tokens mint new
// access tokens and are the unit of revocation.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims is the signed token payload. Role carries the account's primary
// role only; it is authoritative for the lifetime of the token.
type Claims struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	TokenUse   string `json:"token_use"`
	jwt.RegisteredClaims
}

// Pair is an access/refresh token pair issued at login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RevocationList records refresh tokens invalidated before natural expiry.
// Entries carry a TTL equal to the token's remaining validity so the list
// never grows beyond the set of still-live tokens.
//
// Implementations must make a revocation visible to concurrent readers
// before Revoke returns.
type RevocationList interface {
	// Revoke records a token id with the given TTL. Revoking an already
	// revoked id is a no-op.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a token id has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
