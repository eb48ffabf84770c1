package tenant

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrUniversityNotFound = errors.New("university not found")
	ErrBindingNotFound    = errors.New("university binding not found")
)

// University is the unit of data partitioning. All tenant-scoped content
// references exactly one university.
type University struct {
	ID        string    `json:"id"`
	NameUz    string    `json:"name_uz"`
	NameKo    string    `json:"name_ko"`
	Logo      string    `json:"logo,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Name returns the university name for a language, falling back to the
// other translation when the requested one is empty.
func (u *University) Name(lang string) string {
	if lang == "ko" {
		if u.NameKo != "" {
			return u.NameKo
		}
		return u.NameUz
	}
	if u.NameUz != "" {
		return u.NameUz
	}
	return u.NameKo
}

// Binding maps a university_staff account to exactly one university.
// Bindings are created administratively and are read-only here; absence of
// a binding for a tenant-scoped account means zero access, not an error.
type Binding struct {
	AccountID    string    `json:"account_id"`
	UniversityID string    `json:"university_id"`
	GrantedAt    time.Time `json:"granted_at"`
	GrantedBy    string    `json:"granted_by,omitempty"`
}

// Repository defines the interface for university persistence.
type Repository interface {
	// GetByID retrieves a university by ID.
	GetByID(ctx context.Context, id string) (*University, error)

	// List retrieves universities with pagination.
	List(ctx context.Context, limit, offset int) ([]*University, error)
}

// BindingRepository defines read access to university bindings. Reads are
// safe for unsynchronized concurrent use; no writes happen here.
type BindingRepository interface {
	// GetByAccountID retrieves the binding for an account, or
	// ErrBindingNotFound when the account has none.
	GetByAccountID(ctx context.Context, accountID string) (*Binding, error)
}
