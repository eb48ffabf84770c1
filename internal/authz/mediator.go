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

// Content access mediation: pure decisions applying an access tier to reads
// and writes of tenant-scoped items, independent of entity type. Storage
// layers consume the Filter; handlers consume the booleans.
package authz

// ListPolicy selects the behavior for accounts below the required tier.
//
// Content listings deny with an empty result set. The student roster
// instead returns a single truncated record to non-platform accounts; the
// two behaviors are kept as distinct named policies because the asymmetry
// exists in the product and unifying it has not been confirmed intentional.
type ListPolicy int

const (
	// PolicyDenyEmpty returns nothing below the required tier.
	PolicyDenyEmpty ListPolicy = iota
	// PolicyDenyTruncate returns a single record below LevelFull.
	PolicyDenyTruncate
)

// Filter is the scoping predicate a listing must apply server-side. The
// zero value is unrestricted.
type Filter struct {
	// UniversityID, when set, restricts results to one university.
	UniversityID string
	// Empty, when true, forces an empty result set.
	Empty bool
	// Limit, when positive, truncates the result set.
	Limit int
}

// ListFilter computes the scoping predicate for a listing.
func ListFilter(t Tier, policy ListPolicy) Filter {
	switch t.Level {
	case LevelFull:
		return Filter{}
	case LevelTenantScoped:
		if policy == PolicyDenyTruncate {
			// Roster truncation applies to every non-platform tier.
			return Filter{Limit: 1}
		}
		return Filter{UniversityID: t.UniversityID}
	default:
		if policy == PolicyDenyTruncate {
			return Filter{Limit: 1}
		}
		return Filter{Empty: true}
	}
}

// CanRead reports whether the tier may read an item belonging to the given
// university.
func CanRead(t Tier, universityID string) bool {
	switch t.Level {
	case LevelFull:
		return true
	case LevelTenantScoped:
		return t.UniversityID == universityID
	default:
		return false
	}
}

// PrepareWrite resolves the university a new item must be stored under.
// For tenant-scoped accounts the client-supplied university is ignored and
// overwritten with the bound one; it is never validated-and-rejected. Full
// access keeps the proposed university as given. Returns ok=false when the
// tier may not write at all.
func PrepareWrite(t Tier, proposedUniversityID string) (string, bool) {
	switch t.Level {
	case LevelFull:
		return proposedUniversityID, true
	case LevelTenantScoped:
		return t.UniversityID, true
	default:
		return "", false
	}
}

// CanMutate reports whether the tier may update or delete an existing item
// belonging to the given university. The rule is identical to CanRead: a
// tenant-scoped account never mutates an item outside its bound university,
// even if it obtained the item's identity some other way.
func CanMutate(t Tier, universityID string) bool {
	return CanRead(t, universityID)
}
