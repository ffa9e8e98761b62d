// internal/acl/middleware.go
//
// Chi middleware helpers that enforce the admin capability.

package acl

import (
	"fmt"
	"net/http"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/auth"
	"github.com/yanizio/sitedesk/internal/respond"
)

// RequireAgencyAdmin lets the request through only when the authenticated
// identity carries the agency-admin flag.  Anonymous → 401, others → 403.
func RequireAgencyAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, err := auth.Require(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		if !who.IsAgencyAdmin {
			respond.Error(w, r, fmt.Errorf("agency admin required: %w", apperr.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}
