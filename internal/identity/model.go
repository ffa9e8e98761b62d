// internal/identity/model.go
//
// `identity` table row model.
//
// Context
// -------
// An Identity is the authenticated caller behind every API request.  Two
// independent capability flags describe it:
//
//   - IsClient       owns websites (default true on signup).
//   - IsAgencyAdmin  sees and edits every website regardless of owner.
//
// The flags are not a role enum; both may be set at once.
//
// Notes
// -----
// • PasswordHash never leaves the process (`json:"-"`).
// • Nullable profile columns are *string; callers must nil-check.
package identity

import (
	"strings"
	"time"
)

// Identity mirrors one row in the `identity` table.
type Identity struct {
	ID            uint64    `db:"id"              json:"id"`
	Username      string    `db:"username"        json:"username"`
	Email         string    `db:"email"           json:"email"`
	PasswordHash  string    `db:"password_hash"   json:"-"`
	FirstName     string    `db:"first_name"      json:"first_name"`
	LastName      string    `db:"last_name"       json:"last_name"`
	Phone         *string   `db:"phone"           json:"phone"`
	Company       *string   `db:"company"         json:"company"`
	IsClient      bool      `db:"is_client"       json:"is_client"`
	IsAgencyAdmin bool      `db:"is_agency_admin" json:"is_agency_admin"`
	IsActive      bool      `db:"is_active"       json:"is_active"`
	DateJoined    time.Time `db:"date_joined"     json:"date_joined"`
	UpdatedAt     time.Time `db:"updated_at"      json:"updated_at"`
}

// DisplayName is "First Last" when either part is set, else the username.
func (i *Identity) DisplayName() string {
	if full := strings.TrimSpace(i.FirstName + " " + i.LastName); full != "" {
		return full
	}
	return i.Username
}

// SignupInput is the payload accepted by POST /api/auth/signup and by the
// `sitedesk user create` command.
type SignupInput struct {
	Username  string `json:"username"   validate:"required,max=150"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
	Phone     string `json:"phone"      validate:"max=20"`
	Company   string `json:"company"    validate:"max=100"`
}

// SettingsInput is the PATCH /api/auth/user/settings payload.  Nil fields
// are left unchanged.
type SettingsInput struct {
	FirstName *string `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string `json:"last_name"  validate:"omitnil,max=150"`
	Email     *string `json:"email"      validate:"omitnil,email,max=254"`
	Phone     *string `json:"phone"      validate:"omitnil,max=20"`
	Company   *string `json:"company"    validate:"omitnil,max=100"`
}

// apply copies non-nil settings onto i.  Empty phone/company clear the
// column.
func (s SettingsInput) apply(i *Identity) {
	if s.FirstName != nil {
		i.FirstName = *s.FirstName
	}
	if s.LastName != nil {
		i.LastName = *s.LastName
	}
	if s.Email != nil {
		i.Email = *s.Email
	}
	if s.Phone != nil {
		i.Phone = nullable(*s.Phone)
	}
	if s.Company != nil {
		i.Company = nullable(*s.Company)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
