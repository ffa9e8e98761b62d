// internal/identity/service.go
//
// Identity use-cases: signup, credential check, profile settings.
//
// Notes
// -----
// • Unknown login and wrong password produce the same error so callers
//   cannot probe which usernames exist.
// • Signup always creates a plain client; agency admins are created from
//   the CLI (`sitedesk user create --agency-admin`).
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/validate"
)

// ErrInvalidCredentials is returned by Authenticate for any login failure.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", apperr.ErrUnauthenticated)

// Service wires the store to a pool and a password hasher.
type Service struct {
	db     *sqlx.DB
	store  Store
	hasher *Hasher
}

// NewService returns a Service backed by db.
func NewService(db *sqlx.DB, hasher *Hasher) *Service {
	return &Service{db: db, hasher: hasher}
}

// Signup creates a client identity.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Identity, error) {
	return s.Create(ctx, in, false)
}

// Create validates in, hashes the password, and inserts the row.  The
// client flag is always set; agencyAdmin adds the admin capability.
func (s *Service) Create(ctx context.Context, in SignupInput, agencyAdmin bool) (*Identity, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	i := &Identity{
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  hash,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Phone:         nullable(in.Phone),
		Company:       nullable(in.Company),
		IsClient:      true,
		IsAgencyAdmin: agencyAdmin,
		IsActive:      true,
	}
	if err := s.store.Insert(ctx, s.db, i); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, fmt.Errorf("email %q is already registered: %w", in.Email, apperr.ErrConflict)
		}
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("username %q is already taken: %w", in.Username, apperr.ErrConflict)
		}
		return nil, err
	}
	return s.store.ByID(ctx, s.db, i.ID)
}

// Authenticate returns the active identity matching login and password.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*Identity, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	i, err := s.store.ByLogin(ctx, s.db, login)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(i.PasswordHash, password); err != nil || !i.IsActive {
		return nil, ErrInvalidCredentials
	}
	return i, nil
}

// ByID loads one identity.
func (s *Service) ByID(ctx context.Context, id uint64) (*Identity, error) {
	return s.store.ByID(ctx, s.db, id)
}

// All lists every identity.  Callers gate this to agency admins.
func (s *Service) All(ctx context.Context) ([]Identity, error) {
	return s.store.All(ctx, s.db)
}

// UpdateSettings applies in to identity id and returns the fresh row.
func (s *Service) UpdateSettings(ctx context.Context, id uint64, in SettingsInput) (*Identity, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	i, err := s.store.ByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	in.apply(i)
	if err := s.store.UpdateProfile(ctx, s.db, i); err != nil {
		return nil, err
	}
	return s.store.ByID(ctx, s.db, id)
}
