// internal/auth/middleware.go
//
// Bearer-token middleware for chi.
//
// Workflow
// --------
//  1. Read `Authorization: Bearer <jwt>`.
//  2. Verify the token (signature, issuer, expiry).
//  3. Reject denylisted jti values.
//  4. Load the identity named by `sub`; inactive accounts are rejected.
//  5. Attach identity + claims to the request context.
//
// Any failure ends the request with a 401 envelope via internal/respond
// and bumps auth_failures_total{reason}.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/metrics"
	"github.com/yanizio/sitedesk/internal/respond"
)

var (
	ErrNoAuthHeader      = fmt.Errorf("authorization header is required: %w", apperr.ErrUnauthenticated)
	ErrInvalidAuthFormat = fmt.Errorf("invalid authorization format: %w", apperr.ErrUnauthenticated)
)

// IdentityLoader resolves a token subject to an identity.
type IdentityLoader interface {
	ByID(ctx context.Context, id uint64) (*identity.Identity, error)
}

// RevocationChecker reports denylisted token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticator bundles the collaborators the middleware needs.
type Authenticator struct {
	tokens  *Tokens
	revoked RevocationChecker
	ids     IdentityLoader
}

// NewAuthenticator wires the middleware.
func NewAuthenticator(tokens *Tokens, revoked RevocationChecker, ids IdentityLoader) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked, ids: ids}
}

// Middleware rejects anonymous requests with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, claims, reason, err := a.authenticate(r)
		if err != nil {
			metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
			respond.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident, claims)))
	})
}

// authenticate returns a reason label alongside any error for metrics.
func (a *Authenticator) authenticate(r *http.Request) (*identity.Identity, *Claims, string, error) {
	raw, err := bearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, nil, "missing", err
	}

	claims, err := a.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, nil, "expired", err
		}
		return nil, nil, "invalid", err
	}

	revoked, err := a.revoked.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, nil, "error", err
	}
	if revoked {
		return nil, nil, "revoked", ErrRevokedToken
	}

	id, err := claims.IdentityID()
	if err != nil {
		return nil, nil, "invalid", err
	}
	ident, err := a.ids.ByID(r.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, "unknown_identity", ErrInvalidToken
	}
	if err != nil {
		return nil, nil, "error", err
	}
	if !ident.IsActive {
		return nil, nil, "inactive", ErrInvalidToken
	}
	return ident, claims, "", nil
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", ErrNoAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidAuthFormat
	}
	return strings.TrimSpace(token), nil
}
