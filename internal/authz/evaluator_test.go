package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/identity"
	"github.com/upsight-edu/upsight/internal/tenant"
)

type mockBindingRepo struct {
	bindings map[string]*tenant.Binding
	err      error
}

func (m *mockBindingRepo) GetByAccountID(ctx context.Context, accountID string) (*tenant.Binding, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.bindings[accountID]
	if !ok {
		return nil, tenant.ErrBindingNotFound
	}
	return b, nil
}

// TestPurpose: Validates tier computation for every role in the closed enumeration.
// Scope: Unit Test
// Expected: upsight_staff -> Full; bound university_staff -> TenantScoped with the bound
// university; unbound university_staff -> None (fail closed); user -> None.
// Test Case ID: EVL-01
func TestEvaluator_Evaluate(t *testing.T) {
	bindings := &mockBindingRepo{bindings: map[string]*tenant.Binding{
		"acc-bound": {AccountID: "acc-bound", UniversityID: "U1"},
	}}
	e := NewEvaluator(bindings, audit.NewSlogLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		sub  Subject
		want Tier
	}{
		{
			name: "platform staff gets full access",
			sub:  Subject{AccountID: "acc-1", Role: identity.RolePlatformStaff},
			want: Tier{Level: LevelFull},
		},
		{
			name: "bound tenant staff gets scoped access",
			sub:  Subject{AccountID: "acc-bound", Role: identity.RoleTenantStaff},
			want: Tier{Level: LevelTenantScoped, UniversityID: "U1"},
		},
		{
			name: "unbound tenant staff fails closed",
			sub:  Subject{AccountID: "acc-unbound", Role: identity.RoleTenantStaff},
			want: Tier{Level: LevelNone},
		},
		{
			name: "unprivileged gets none",
			sub:  Subject{AccountID: "acc-2", Role: identity.RoleUnprivileged},
			want: Tier{Level: LevelNone},
		},
		{
			name: "unknown role fails closed",
			sub:  Subject{AccountID: "acc-3", Role: identity.Role("superadmin")},
			want: Tier{Level: LevelNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(ctx, tt.sub)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPurpose: Validates that a binding store failure propagates instead of silently granting or denying.
// Scope: Unit Test
// Test Case ID: EVL-02
func TestEvaluator_BindingStoreError(t *testing.T) {
	bindings := &mockBindingRepo{err: errors.New("connection refused")}
	e := NewEvaluator(bindings, audit.NewSlogLogger())

	_, err := e.Evaluate(context.Background(), Subject{AccountID: "acc-1", Role: identity.RoleTenantStaff})
	assert.Error(t, err)
}
