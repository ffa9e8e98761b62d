// internal/acl/acl_test.go
//
// Unit-tests for the ownership-or-admin predicate and admin middleware.
//
// Run: go test ./internal/acl -v

package acl

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/auth"
	"github.com/yanizio/sitedesk/internal/identity"
)

type site struct{ owner uint64 }

func (s site) OwnerRef() uint64 { return s.owner }

func TestCanAct(t *testing.T) {
	owner := &identity.Identity{ID: 1, IsClient: true}
	other := &identity.Identity{ID: 2, IsClient: true}
	admin := &identity.Identity{ID: 3, IsAgencyAdmin: true}
	both := &identity.Identity{ID: 4, IsClient: true, IsAgencyAdmin: true}
	w := site{owner: 1}

	cases := []struct {
		name string
		who  *identity.Identity
		want bool
	}{
		{"owner", owner, true},
		{"other client", other, false},
		{"agency admin", admin, true},
		{"client and admin", both, true},
		{"nil identity", nil, false},
	}
	for _, tc := range cases {
		if got := CanAct(tc.who, w); got != tc.want {
			t.Errorf("%s: CanAct = %v, want %v", tc.name, got, tc.want)
		}
		err := Authorize(tc.who, w)
		if tc.want && err != nil {
			t.Errorf("%s: Authorize = %v, want nil", tc.name, err)
		}
		if !tc.want && !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("%s: Authorize = %v, want ErrForbidden", tc.name, err)
		}
	}
}

// Listing through Scope must agree with CanAct for every pair.
func TestScopeMatchesCanAct(t *testing.T) {
	ids := []*identity.Identity{
		{ID: 1, IsClient: true},
		{ID: 2, IsClient: true},
		{ID: 3, IsAgencyAdmin: true},
		{ID: 4, IsClient: true, IsAgencyAdmin: true},
	}
	sites := []site{{owner: 1}, {owner: 2}, {owner: 3}, {owner: 9}}

	for _, u := range ids {
		scope := Scope(u)
		for _, w := range sites {
			listed := scope == nil || *scope == w.owner
			if listed != CanAct(u, w) {
				t.Fatalf("identity %d, owner %d: listed=%v CanAct=%v",
					u.ID, w.owner, listed, CanAct(u, w))
			}
		}
	}
}

func TestRequireAgencyAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAgencyAdmin(ok)

	cases := []struct {
		name string
		who  *identity.Identity
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"client", &identity.Identity{ID: 1, IsClient: true}, http.StatusForbidden},
		{"admin", &identity.Identity{ID: 2, IsAgencyAdmin: true}, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		if tc.who != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), tc.who, nil))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}
