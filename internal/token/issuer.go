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
	"github.com/google/uuid"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/identity"
)

// Config holds token issuance configuration.
type Config struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer mints and verifies signed access/refresh token pairs.
type Issuer struct {
	signingKey  []byte
	issuer      string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	revoked     RevocationList
	auditLogger audit.Logger
	now         func() time.Time
}

// NewIssuer creates a new token issuer.
func NewIssuer(cfg Config, revoked RevocationList, auditLogger audit.Logger) *Issuer {
	return &Issuer{
		signingKey:  cfg.SigningKey,
		issuer:      cfg.Issuer,
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		revoked:     revoked,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Issue mints an access/refresh pair for an authenticated account. Both
// tokens embed the account id as subject, the employee id, and the primary
// role.
func (i *Issuer) Issue(ctx context.Context, account *identity.Account) (*Pair, error) {
	access, err := i.sign(account, UseAccess, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := i.sign(account, UseRefresh, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	i.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenIssued,
		ActorID:  account.ID,
		Resource: "token_pair",
		Metadata: map[string]any{
			audit.AttrEmployeeID: account.EmployeeID,
			audit.AttrRole:       string(account.PrimaryRole()),
		},
	})

	return &Pair{Access: access, Refresh: refresh}, nil
}

// Verify checks signature, expiry, and token use. Refresh tokens are also
// checked against the revocation list. All failures wrap ErrAuthentication.
func (i *Issuer) Verify(ctx context.Context, raw, use string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return i.signingKey, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}

	if claims.TokenUse != use {
		return nil, ErrWrongUse
	}

	if use == UseRefresh {
		revoked, err := i.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	return claims, nil
}

// Refresh verifies a refresh token and mints a new access token with
// identical identity claims. Role and identity come from the token itself,
// not from a store lookup; a role change takes effect only at re-login or
// after the refresh token is revoked.
func (i *Issuer) Refresh(ctx context.Context, refreshRaw string) (string, error) {
	claims, err := i.Verify(ctx, refreshRaw, UseRefresh)
	if err != nil {
		return "", err
	}

	access, err := i.signClaims(claims.Subject, claims.EmployeeID, claims.Role, UseAccess, i.accessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	i.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenRefreshed,
		ActorID:  claims.Subject,
		Resource: "access_token",
		Metadata: map[string]any{audit.AttrEmployeeID: claims.EmployeeID},
	})

	return access, nil
}

// Revoke inserts the refresh token's id into the revocation list with a TTL
// matching its remaining lifetime. Revoking an expired or already-revoked
// token succeeds; logout stays idempotent.
func (i *Issuer) Revoke(ctx context.Context, refreshRaw string) error {
	claims, err := i.Verify(ctx, refreshRaw, UseRefresh)
	if errors.Is(err, ErrExpired) || errors.Is(err, ErrRevoked) {
		return nil
	}
	if err != nil {
		return err
	}

	remaining := claims.ExpiresAt.Time.Sub(i.now())
	if remaining <= 0 {
		return nil
	}

	if err := i.revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	i.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenRevoked,
		ActorID:  claims.Subject,
		Resource: "refresh_token",
		Metadata: map[string]any{audit.AttrEmployeeID: claims.EmployeeID},
	})

	return nil
}

func (i *Issuer) sign(account *identity.Account, use string, ttl time.Duration) (string, error) {
	return i.signClaims(account.ID, account.EmployeeID, string(account.PrimaryRole()), use, ttl)
}

func (i *Issuer) signClaims(subject, employeeID, role, use string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		EmployeeID: employeeID,
		Role:       role,
		TokenUse:   use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
