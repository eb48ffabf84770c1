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
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// MemoryRevocationList is an in-process RevocationList backed by a
// ristretto TTL cache. Suitable for single-instance deployments and tests;
// multi-instance deployments use the postgres-backed list.
type MemoryRevocationList struct {
	cache *ristretto.Cache[string, int64]
}

// NewMemoryRevocationList creates an in-memory revocation list sized for
// maxEntries live revocations.
func NewMemoryRevocationList(maxEntries int64) (*MemoryRevocationList, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, int64]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryRevocationList{cache: cache}, nil
}

// Revoke records the token id. Wait flushes ristretto's set buffer so the
// revocation is visible to concurrent readers before Revoke returns.
func (l *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	l.cache.SetWithTTL(jti, time.Now().Add(ttl).Unix(), 1, ttl)
	l.cache.Wait()
	return nil
}

// IsRevoked reports whether the token id is in the list.
func (l *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := l.cache.Get(jti)
	return found, nil
}

// Close releases cache resources.
func (l *MemoryRevocationList) Close() {
	l.cache.Close()
}
