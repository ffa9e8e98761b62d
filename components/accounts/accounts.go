// components/accounts/accounts.go
//
// Sitedesk accounts component – signup, login, logout, profile, and the
// admin identity list.
//
// Routes (mounted under /api)
// ---------------------------
//
//	POST  /auth/signup          public
//	POST  /auth/login           public
//	POST  /auth/logout          bearer
//	GET   /auth/user            bearer
//	PATCH /auth/user/settings   bearer
//	GET   /users                bearer + agency admin
//
// Notes
// -----
// • Signup and login answer with {token, user}.
// • Logout denylists the presented token's jti until its natural expiry,
//   then sweeps rows that have already expired.
//
//------------------------------------------------------------------------------

package accounts

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/acl"
	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/auth"
	"github.com/yanizio/sitedesk/internal/component"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/metrics"
	"github.com/yanizio/sitedesk/internal/respond"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates account handling.
type Component struct{}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "accounts" }

// Routes registers the account endpoints on r.
func (c *Component) Routes(r chi.Router, env *component.Env) {
	h := &handlers{env: env}

	r.Post("/auth/signup", h.signup)
	r.Post("/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(env.Authenticator.Middleware)
		pr.Post("/auth/logout", h.logout)
		pr.Get("/auth/user", h.user)
		pr.Patch("/auth/user/settings", h.settings)
		pr.With(acl.RequireAgencyAdmin).Get("/users", h.users)
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type handlers struct{ env *component.Env }

// session is the signup / login response body.
type session struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      *identity.Identity `json:"user"`
}

type loginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var in identity.SignupInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	ident, err := h.env.Identities.Signup(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.issue(w, r, http.StatusCreated, ident)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	login := strings.TrimSpace(in.Username)
	if login == "" {
		login = strings.TrimSpace(in.Email)
	}
	ident, err := h.env.Identities.Authenticate(r.Context(), login, in.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		}
		respond.Error(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, ident)
}

func (h *handlers) issue(w http.ResponseWriter, r *http.Request, status int, ident *identity.Identity) {
	token, claims, err := h.env.Tokens.Issue(ident.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, status, session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      ident,
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.ErrUnauthenticated)
		return
	}
	if err := h.env.Revocations.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		respond.Error(w, r, err)
		return
	}
	if n, err := h.env.Revocations.Purge(r.Context(), time.Now()); err != nil {
		h.env.Log.Warn("purge revoked tokens", zap.Error(err))
	} else if n > 0 {
		h.env.Log.Debug("purged revoked tokens", zap.Int64("rows", n))
	}
	respond.NoContent(w)
}

func (h *handlers) user(w http.ResponseWriter, r *http.Request) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, who)
}

func (h *handlers) settings(w http.ResponseWriter, r *http.Request) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var in identity.SettingsInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	updated, err := h.env.Identities.UpdateSettings(r.Context(), who.ID, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (h *handlers) users(w http.ResponseWriter, r *http.Request) {
	all, err := h.env.Identities.All(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, all)
}
