// internal/activity/model.go
//
// `activity_log` row model.
//
// Context
// -------
// Entries are an audit trail of writes against one website.  They are
// created only as a side effect of website and section mutations and are
// never updated.  The acting identity is optional; when that identity is
// deleted the database clears the reference (ON DELETE SET NULL) and the
// entry survives.
package activity

import (
	"fmt"
	"time"

	"github.com/yanizio/sitedesk/internal/apperr"
)

// Type classifies an entry.
type Type string

const (
	TypeUpdate  Type = "update"
	TypeVisitor Type = "visitor"
	TypeSystem  Type = "system"
)

// Valid reports whether t is one of the three enum values.
func (t Type) Valid() bool {
	switch t {
	case TypeUpdate, TypeVisitor, TypeSystem:
		return true
	}
	return false
}

// Entry is one persisted log line joined with its actor's display name.
type Entry struct {
	ID          uint64    `db:"id"          json:"id"`
	WebsiteID   uint64    `db:"website_id"  json:"website"`
	Description string    `db:"description" json:"description"`
	Type        Type      `db:"type"        json:"type"`
	CreatedAt   time.Time `db:"created_at"  json:"timestamp"`
	IdentityID  *uint64   `db:"identity_id" json:"user"`
	UserName    *string   `db:"user_name"   json:"user_name"`
}

// Event is what a write operation emits for the log.
type Event struct {
	WebsiteID   uint64
	Type        Type
	Description string
	Actor       *uint64
}

// maxDescription matches the column width.
const maxDescription = 255

func (e *Event) check() error {
	if e.WebsiteID == 0 {
		return fmt.Errorf("activity event without website: %w", apperr.Invalid("website", "is required"))
	}
	if !e.Type.Valid() {
		return fmt.Errorf("activity event type %q: %w", e.Type, apperr.Invalid("type", "must be update, visitor, or system"))
	}
	if r := []rune(e.Description); len(r) > maxDescription {
		e.Description = string(r[:maxDescription])
	}
	return nil
}

// Actor is a convenience for building Event.Actor from an id.
func Actor(id uint64) *uint64 {
	if id == 0 {
		return nil
	}
	return &id
}
