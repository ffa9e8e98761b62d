// internal/acl/acl.go
//
// Ownership-or-admin access control.
//
// Context
// -------
// Sitedesk has one authorization rule, applied to websites and, through
// their parent, to sections and activity entries:
//
//	permit  ⇔  who.ID == website.owner  ∨  who.IsAgencyAdmin
//
// Components and services need answers in three shapes:
//  1. Boolean check for a loaded object.            → `CanAct()`
//  2. Error form for mutation gates.                → `Authorize()`
//  3. Owner filter for list queries.                → `Scope()`
//
// Notes
// -----
// • The predicate takes an Owned value rather than a website type so the
//   website package can depend on acl, not the other way round.
// • A nil identity is always denied.
// • Oxford commas, two spaces after periods.
package acl

import (
	"fmt"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/identity"
)

// Owned is anything with a single owning identity.
type Owned interface {
	OwnerRef() uint64
}

// CanAct reports whether who may read or modify target.
func CanAct(who *identity.Identity, target Owned) bool {
	if who == nil || target == nil {
		return false
	}
	return who.IsAgencyAdmin || who.ID == target.OwnerRef()
}

// Authorize is CanAct as an error: nil on permit, ErrForbidden on deny.
func Authorize(who *identity.Identity, target Owned) error {
	if CanAct(who, target) {
		return nil
	}
	return fmt.Errorf("owner or agency admin required: %w", apperr.ErrForbidden)
}

// Scope returns the owner filter for list queries: nil means "every
// website" (agency admins), otherwise a pointer to who.ID.
func Scope(who *identity.Identity) *uint64 {
	if who.IsAgencyAdmin {
		return nil
	}
	id := who.ID
	return &id
}
