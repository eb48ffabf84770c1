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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/authz"
	"github.com/upsight-edu/upsight/internal/content"
	"github.com/upsight-edu/upsight/internal/identity"
	"github.com/upsight-edu/upsight/internal/roster"
	"github.com/upsight-edu/upsight/internal/tenant"
	"github.com/upsight-edu/upsight/internal/token"
)

// ----------------------------------------------------------------------------
// In-memory fakes
// ----------------------------------------------------------------------------

type fakeStore struct {
	accounts map[string]*identity.Account // by employee id
	profiles map[string]*identity.StaffProfile
	bindings map[string]*tenant.Binding
	items    map[string]*content.Item
	docs     map[string][]*content.Document
	students map[string]*roster.Student
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*identity.Account),
		profiles: make(map[string]*identity.StaffProfile),
		bindings: make(map[string]*tenant.Binding),
		items:    make(map[string]*content.Item),
		docs:     make(map[string][]*content.Document),
		students: make(map[string]*roster.Student),
	}
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*identity.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, identity.ErrAccountNotFound
}

func (s *fakeStore) GetByEmployeeID(ctx context.Context, employeeID string) (*identity.Account, error) {
	a, ok := s.accounts[employeeID]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	return a, nil
}

func (s *fakeStore) Deactivate(ctx context.Context, id string) error {
	for _, a := range s.accounts {
		if a.ID == id {
			a.Active = false
			return nil
		}
	}
	return identity.ErrAccountNotFound
}

type fakeStaffRepo struct{ store *fakeStore }

func (s fakeStaffRepo) CreateWithAccount(ctx context.Context, profile *identity.StaffProfile, account *identity.Account) error {
	if _, exists := s.store.accounts[account.EmployeeID]; exists {
		return identity.ErrDuplicateIdentifier
	}
	s.store.accounts[account.EmployeeID] = account
	s.store.profiles[profile.EmployeeID] = profile
	return nil
}

func (s fakeStaffRepo) GetByID(ctx context.Context, id string) (*identity.StaffProfile, error) {
	for _, p := range s.store.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, identity.ErrProfileNotFound
}

func (s fakeStaffRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*identity.StaffProfile, error) {
	p, ok := s.store.profiles[employeeID]
	if !ok {
		return nil, identity.ErrProfileNotFound
	}
	return p, nil
}

func (s fakeStaffRepo) GetByAccountID(ctx context.Context, accountID string) (*identity.StaffProfile, error) {
	for _, p := range s.store.profiles {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, identity.ErrProfileNotFound
}

func (s fakeStaffRepo) List(ctx context.Context, limit, offset int) ([]*identity.StaffProfile, error) {
	out := make([]*identity.StaffProfile, 0, len(s.store.profiles))
	for _, p := range s.store.profiles {
		out = append(out, p)
	}
	return out, nil
}

type fakeBindingRepo struct{ store *fakeStore }

func (s fakeBindingRepo) GetByAccountID(ctx context.Context, accountID string) (*tenant.Binding, error) {
	b, ok := s.store.bindings[accountID]
	if !ok {
		return nil, tenant.ErrBindingNotFound
	}
	return b, nil
}

type fakeTenantRepo struct{}

func (fakeTenantRepo) GetByID(ctx context.Context, id string) (*tenant.University, error) {
	if id == "U1" {
		return &tenant.University{ID: "U1", NameUz: "Toshkent Universiteti"}, nil
	}
	return nil, tenant.ErrUniversityNotFound
}

func (fakeTenantRepo) List(ctx context.Context, limit, offset int) ([]*tenant.University, error) {
	return []*tenant.University{{ID: "U1", NameUz: "Toshkent Universiteti"}}, nil
}

type fakeContentRepo struct{ store *fakeStore }

func (s fakeContentRepo) Create(ctx context.Context, item *content.Item) error {
	cp := *item
	s.store.items[item.ID] = &cp
	return nil
}

func (s fakeContentRepo) GetByID(ctx context.Context, kind content.Kind, id string) (*content.Item, error) {
	item, ok := s.store.items[id]
	if !ok || item.Kind != kind {
		return nil, content.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s fakeContentRepo) List(ctx context.Context, kind content.Kind, f authz.Filter) ([]*content.Item, error) {
	out := []*content.Item{}
	for _, item := range s.store.items {
		if item.Kind != kind {
			continue
		}
		if f.UniversityID != "" && item.UniversityID != f.UniversityID {
			continue
		}
		cp := *item
		out = append(out, &cp)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s fakeContentRepo) Update(ctx context.Context, item *content.Item) error {
	if _, ok := s.store.items[item.ID]; !ok {
		return content.ErrNotFound
	}
	cp := *item
	s.store.items[item.ID] = &cp
	return nil
}

func (s fakeContentRepo) Delete(ctx context.Context, kind content.Kind, id string) error {
	delete(s.store.items, id)
	return nil
}

func (s fakeContentRepo) AddDocument(ctx context.Context, doc *content.Document) error {
	s.store.docs[doc.ItemID] = append(s.store.docs[doc.ItemID], doc)
	return nil
}

func (s fakeContentRepo) ListDocuments(ctx context.Context, itemID string) ([]*content.Document, error) {
	return s.store.docs[itemID], nil
}

type fakeRosterRepo struct{ store *fakeStore }

func (s fakeRosterRepo) GetByID(ctx context.Context, id string) (*roster.Student, error) {
	st, ok := s.store.students[id]
	if !ok {
		return nil, roster.ErrStudentNotFound
	}
	return st, nil
}

func (s fakeRosterRepo) List(ctx context.Context, f authz.Filter) ([]*roster.Student, error) {
	out := []*roster.Student{}
	for _, st := range s.store.students {
		if f.UniversityID != "" && st.UniversityID != f.UniversityID {
			continue
		}
		out = append(out, st)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Fixture
// ----------------------------------------------------------------------------

type fixture struct {
	store   *fakeStore
	handler *Handler
	router  http.Handler
	issuer  *token.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	auditLogger := audit.NewSlogLogger()
	hasher := identity.NewPasswordHasher(65536, 3, 4, 16, 32)

	revoked, err := token.NewMemoryRevocationList(1024)
	require.NoError(t, err)
	t.Cleanup(revoked.Close)

	issuer := token.NewIssuer(token.Config{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "upsight",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, revoked, auditLogger)

	staff := fakeStaffRepo{store: store}
	h := NewHandler(
		identity.NewAuthenticator(store, hasher, auditLogger),
		identity.NewProvisioner(store, staff, hasher, auditLogger),
		staff,
		issuer,
		authz.NewEvaluator(fakeBindingRepo{store: store}, auditLogger),
		content.NewService(fakeContentRepo{store: store}, auditLogger),
		roster.NewService(fakeRosterRepo{store: store}, auditLogger),
		fakeTenantRepo{},
		auditLogger,
	)

	return &fixture{
		store:   store,
		handler: h,
		router:  NewRouter(h, NewRateLimiter(1000, 1000)),
		issuer:  issuer,
	}
}

func (f *fixture) seedAccount(t *testing.T, employeeID, password string, role identity.Role, universityID string) *identity.Account {
	t.Helper()
	hasher := identity.NewPasswordHasher(65536, 3, 4, 16, 32)
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	acc := &identity.Account{
		ID:           "acc-" + employeeID,
		EmployeeID:   employeeID,
		Email:        employeeID + "@upsight.example",
		Name:         "Staff " + employeeID,
		Roles:        []identity.Role{role},
		PasswordHash: hash,
		Active:       true,
	}
	f.store.accounts[employeeID] = acc
	f.store.profiles[employeeID] = &identity.StaffProfile{
		ID:         "prof-" + employeeID,
		EmployeeID: employeeID,
		NameUz:     "Xodim " + employeeID,
		AccountID:  acc.ID,
	}
	if universityID != "" {
		f.store.bindings[acc.ID] = &tenant.Binding{AccountID: acc.ID, UniversityID: universityID}
	}
	return acc
}

func (f *fixture) login(t *testing.T, employeeID, password string) (access, refresh string) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"employee_id": employeeID,
		"password":    password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Access, resp.Refresh
}

func (f *fixture) do(t *testing.T, method, path, accessToken string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// AUTHENTICATION FLOW TESTS
// Category: Auth API - Credential Authentication & Token Lifecycle
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates the login response contract.
// Scope: Unit Test
// Expected: 200 with refresh, access, and a user object carrying id, email,
// name, and role.
// Test Case ID: LGN-01
func TestAuth_Login_Success(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "emp-1", "correct horse battery", identity.RolePlatformStaff, "")

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"employee_id": "emp-1",
		"password":    "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access"])
	assert.NotEmpty(t, resp["refresh"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok, "response must carry a user object")
	assert.Equal(t, "acc-emp-1", user["id"])
	assert.Equal(t, "emp-1@upsight.example", user["email"])
	assert.Equal(t, "upsight_staff", user["role"])
}

// TestPurpose: Validates that every credential failure yields the same 401.
// Scope: Unit Test
// Security: Account enumeration resistance (CWE-203)
// Expected: Unknown employee id, wrong password, and deactivated account all
// return an identical 401 body.
// Test Case ID: LGN-02
func TestAuth_Login_UniformFailure(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "emp-1", "correct horse battery", identity.RolePlatformStaff, "")
	inactive := f.seedAccount(t, "emp-2", "another password", identity.RoleTenantStaff, "U1")
	inactive.Active = false

	cases := []struct {
		name string
		body map[string]string
	}{
		{"unknown employee id", map[string]string{"employee_id": "ghost", "password": "x"}},
		{"wrong password", map[string]string{"employee_id": "emp-1", "password": "wrong"}},
		{"deactivated account", map[string]string{"employee_id": "emp-2", "password": "another password"}},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", tc.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			bodies = append(bodies, w.Body.String())
		})
	}
	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i], "failure responses must be indistinguishable")
	}
}

// TestPurpose: Validates malformed login input handling.
// Scope: Unit Test
// Test Case ID: LGN-03
func TestAuth_Login_MalformedJSON_ReturnsBadRequest(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{invalid_json}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPurpose: Validates the refresh exchange and refresh revocation on logout.
// Scope: Unit Test
// Expected: Refresh yields a new access token; after logout the same refresh
// token is rejected, while logging out again still succeeds.
// Test Case ID: LGN-04
func TestAuth_RefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "emp-1", "correct horse battery", identity.RolePlatformStaff, "")
	access, refresh := f.login(t, "emp-1", "correct horse battery")

	w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access"])

	// Logout is authenticated and revokes the refresh token.
	w = f.do(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout requires an access token")

	w = f.do(t, http.MethodPost, "/api/v1/auth/logout", access, map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked refresh token must be rejected")

	// Logout is idempotent.
	w = f.do(t, http.MethodPost, "/api/v1/auth/logout", access, map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusOK, w.Code)

	// Garbage is not.
	w = f.do(t, http.MethodPost, "/api/v1/auth/logout", access, map[string]string{"refresh": "not-a-token"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPurpose: Validates that a refresh token cannot authenticate a request
// and an access token cannot be exchanged.
// Scope: Unit Test
// Security: Token use confusion (CWE-287)
// Test Case ID: LGN-05
func TestAuth_TokenUseSeparation(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "emp-1", "correct horse battery", identity.RolePlatformStaff, "")
	access, refresh := f.login(t, "emp-1", "correct horse battery")

	w := f.do(t, http.MethodGet, "/api/v1/auth/profile", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh token must not authenticate requests")

	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "access token must not be exchangeable")
}

// TestPurpose: Validates the profile endpoint merges live display fields with
// the token role.
// Scope: Unit Test
// Test Case ID: PRF-01
func TestAuth_GetProfile(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "emp-1", "correct horse battery", identity.RoleTenantStaff, "U1")
	access, _ := f.login(t, "emp-1", "correct horse battery")

	w := f.do(t, http.MethodGet, "/api/v1/auth/profile", access, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "emp-1", resp["employee_id"])
	assert.Equal(t, "Xodim emp-1", resp["name_uz"])
	assert.Equal(t, "university_staff", resp["role"])

	w = f.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// =============================================================================
// PROVISIONING TESTS
// =============================================================================

// TestPurpose: Validates staff provisioning authorization and conflict mapping.
// Scope: Unit Test
// Expected: Full access may provision (201); tenant-scoped gets 403; a
// duplicate employee id is a 409.
// Test Case ID: PRV-01
func TestStaff_Provision(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "admin", "correct horse battery", identity.RolePlatformStaff, "")
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	adminAccess, _ := f.login(t, "admin", "correct horse battery")
	managerAccess, _ := f.login(t, "manager", "manager password")

	body := map[string]string{
		"employee_id": "emp-new",
		"name_uz":     "Yangi Xodim",
		"password":    "initial password",
	}

	w := f.do(t, http.MethodPost, "/api/v1/staff", managerAccess, body)
	assert.Equal(t, http.StatusForbidden, w.Code, "tenant staff must not provision")

	w = f.do(t, http.MethodPost, "/api/v1/staff", adminAccess, body)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "emp-new", resp["employee_id"])
	assert.Equal(t, "upsight_staff", resp["role"])

	// The new account can log in immediately.
	f.login(t, "emp-new", "initial password")

	w = f.do(t, http.MethodPost, "/api/v1/staff", adminAccess, body)
	assert.Equal(t, http.StatusConflict, w.Code, "duplicate employee id must be a conflict")
}

// TestPurpose: Validates that the staff directory is reserved for platform
// staff.
// Scope: Unit Test
// Expected: Platform staff list and read employee records; tenant-scoped and
// unprivileged accounts get 403; an unknown id is a 404.
// Test Case ID: PRV-02
func TestStaff_ListAndDetail(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "admin", "correct horse battery", identity.RolePlatformStaff, "")
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	adminAccess, _ := f.login(t, "admin", "correct horse battery")
	managerAccess, _ := f.login(t, "manager", "manager password")

	w := f.do(t, http.MethodGet, "/api/v1/staff", managerAccess, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "tenant staff must not read the directory")

	w = f.do(t, http.MethodGet, "/api/v1/staff", adminAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Staff []map[string]any `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Staff, 2)

	w = f.do(t, http.MethodGet, "/api/v1/staff/prof-manager", managerAccess, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "even one's own record requires full access here")

	w = f.do(t, http.MethodGet, "/api/v1/staff/prof-manager", adminAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "manager", detail["employee_id"])
	assert.Equal(t, "Xodim manager", detail["name_uz"])

	w = f.do(t, http.MethodGet, "/api/v1/staff/prof-ghost", adminAccess, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// TENANT REGISTRY TESTS
// =============================================================================

// TestPurpose: Validates that the university registry is reserved for
// platform staff.
// Scope: Unit Test
// Expected: Platform staff list and read universities; tenant-scoped and
// unprivileged accounts get 403 on both list and detail.
// Test Case ID: UNI-01
func TestUniversities_FullTierOnly(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "admin", "correct horse battery", identity.RolePlatformStaff, "")
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	f.seedAccount(t, "plain", "plain password", identity.RoleUnprivileged, "")
	adminAccess, _ := f.login(t, "admin", "correct horse battery")
	managerAccess, _ := f.login(t, "manager", "manager password")
	plainAccess, _ := f.login(t, "plain", "plain password")

	for name, access := range map[string]string{"manager": managerAccess, "plain": plainAccess} {
		w := f.do(t, http.MethodGet, "/api/v1/universities/", access, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s must not list universities", name)

		w = f.do(t, http.MethodGet, "/api/v1/universities/U1", access, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s must not read a university", name)
	}

	w := f.do(t, http.MethodGet, "/api/v1/universities/", adminAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Universities []*tenant.University `json:"universities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Universities, 1)

	w = f.do(t, http.MethodGet, "/api/v1/universities/U1", adminAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var u tenant.University
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "Toshkent Universiteti", u.NameUz)
}

// =============================================================================
// CONTENT ACCESS TESTS
// =============================================================================

func (f *fixture) seedItem(id string, kind content.Kind, universityID string) {
	f.store.items[id] = &content.Item{
		ID: id, Kind: kind, TitleUz: "t-" + id, UniversityID: universityID, Date: time.Now(),
	}
}

// TestPurpose: Validates tenant scoping of content listings over HTTP.
// Scope: Unit Test
// Security: Multi-tenant data separation (CWE-284)
// Expected: A tenant-scoped manager lists only the bound university's items;
// an unknown kind is a 404.
// Test Case ID: CNT-10
func TestContent_List_Scoped(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	access, _ := f.login(t, "manager", "manager password")

	f.seedItem("n1", content.KindNews, "U1")
	f.seedItem("n2", content.KindNews, "U2")

	w := f.do(t, http.MethodGet, "/api/v1/content/news/", access, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []*content.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "n1", resp.Items[0].ID)

	w = f.do(t, http.MethodGet, "/api/v1/content/events/", access, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestPurpose: Validates the cross-tenant detail view is an explicit 403.
// Scope: Unit Test
// Test Case ID: CNT-11
func TestContent_Get_CrossTenant_Forbidden(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	access, _ := f.login(t, "manager", "manager password")

	f.seedItem("n2", content.KindNotice, "U2")

	w := f.do(t, http.MethodGet, "/api/v1/content/notice/n2/", access, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/content/notice/missing/", access, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestPurpose: Validates that creation pins the university server-side.
// Scope: Unit Test
// Security: Tenant spoofing via request body
// Test Case ID: CNT-12
func TestContent_Create_PinsUniversity(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	access, _ := f.login(t, "manager", "manager password")

	w := f.do(t, http.MethodPost, "/api/v1/content/news/", access, map[string]string{
		"title_uz":      "yangilik",
		"university_id": "U2",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created content.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "U1", created.UniversityID, "client-supplied university must be overwritten")
}

// TestPurpose: Validates that an unprivileged account gets empty listings and
// denied writes.
// Scope: Unit Test
// Test Case ID: CNT-13
func TestContent_UnprivilegedDenied(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "plain", "plain password", identity.RoleUnprivileged, "")
	access, _ := f.login(t, "plain", "plain password")

	f.seedItem("n1", content.KindNews, "U1")

	w := f.do(t, http.MethodGet, "/api/v1/content/news/", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []*content.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)

	w = f.do(t, http.MethodPost, "/api/v1/content/news/", access, map[string]string{"title_uz": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// =============================================================================
// ROSTER TESTS
// =============================================================================

// TestPurpose: Validates roster truncation over HTTP.
// Scope: Unit Test
// Expected: Platform staff get the full roster and access_level "full";
// everyone else gets one record and "limited".
// Test Case ID: RST-10
func TestStudents_List_Truncated(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "admin", "correct horse battery", identity.RolePlatformStaff, "")
	f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	adminAccess, _ := f.login(t, "admin", "correct horse battery")
	managerAccess, _ := f.login(t, "manager", "manager password")

	f.store.students["st-1"] = &roster.Student{ID: "st-1", StudentID: "2021001", UniversityID: "U1"}
	f.store.students["st-2"] = &roster.Student{ID: "st-2", StudentID: "2021002", UniversityID: "U2"}

	w := f.do(t, http.MethodGet, "/api/v1/students/", adminAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing roster.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, roster.AccessFull, listing.AccessLevel)
	assert.Len(t, listing.Students, 2)

	w = f.do(t, http.MethodGet, "/api/v1/students/", managerAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, roster.AccessLimited, listing.AccessLevel)
	assert.Len(t, listing.Students, 1)

	// Individual records are platform-only.
	w = f.do(t, http.MethodGet, "/api/v1/students/st-1", managerAccess, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, http.MethodGet, "/api/v1/students/st-1", adminAccess, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

// TestPurpose: Validates that protected routes reject missing or tampered tokens.
// Scope: Unit Test
// Security: Token forgery (CWE-347)
// Test Case ID: MWR-01
func TestAuthMiddleware_RejectsInvalidTokens(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "emp-1", "correct horse battery", identity.RolePlatformStaff, "")
	access, _ := f.login(t, "emp-1", "correct horse battery")

	w := f.do(t, http.MethodGet, "/api/v1/students/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tampered := access[:len(access)-2] + "xx"
	w = f.do(t, http.MethodGet, "/api/v1/students/", tampered, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestPurpose: Validates that a manager whose binding disappears loses tenant
// access immediately, without reissuing tokens.
// Scope: Unit Test
// Expected: Listings go empty once the binding is removed; the request still
// succeeds.
// Test Case ID: MWR-02
func TestBindingRemoval_TakesEffectImmediately(t *testing.T) {
	f := newFixture(t)
	acc := f.seedAccount(t, "manager", "manager password", identity.RoleTenantStaff, "U1")
	access, _ := f.login(t, "manager", "manager password")

	f.seedItem("n1", content.KindNews, "U1")

	w := f.do(t, http.MethodGet, "/api/v1/content/news/", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []*content.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)

	delete(f.store.bindings, acc.ID)

	w = f.do(t, http.MethodGet, "/api/v1/content/news/", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items, "binding removal must fail closed on the next request")
}
