// internal/auth/context.go
//
// Request-context helpers for the authenticated identity.
//
// Usage
// -----
//     // Middleware attaches the caller after verifying the bearer token.
//     ctx = auth.WithIdentity(ctx, ident, claims)
//
//     // Handlers retrieve it.
//     who, err := auth.Require(r.Context())   // apperr.ErrUnauthenticated if absent
//
// Notes
// -----
// • Claims travel alongside the identity so logout can revoke the exact
//   token that made the request.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/identity"
)

// ctxKey is unexported to avoid context-key collisions.
type ctxKey struct{}

type principal struct {
	ident  *identity.Identity
	claims *Claims
}

// WithIdentity returns a new context carrying ident and the token claims
// that authenticated it.  claims may be nil (tests, CLI).
func WithIdentity(ctx context.Context, ident *identity.Identity, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, principal{ident: ident, claims: claims})
}

// FromContext extracts the identity.  It returns (nil, false) when the
// request is anonymous.
func FromContext(ctx context.Context) (*identity.Identity, bool) {
	p, ok := ctx.Value(ctxKey{}).(principal)
	if !ok || p.ident == nil {
		return nil, false
	}
	return p.ident, true
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	p, ok := ctx.Value(ctxKey{}).(principal)
	if !ok || p.claims == nil {
		return nil, false
	}
	return p.claims, true
}

// Require is FromContext for handlers: anonymous → ErrUnauthenticated.
func Require(ctx context.Context) (*identity.Identity, error) {
	if who, ok := FromContext(ctx); ok {
		return who, nil
	}
	return nil, apperr.ErrUnauthenticated
}
