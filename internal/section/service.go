// internal/section/service.go
//
// Section use-cases, always scoped to a parent website.
//
// Context
// -------
// Reads and writes resolve the parent first:
//
//	parent missing                     → not-found
//	read,  parent not visible          → not-found
//	write, caller not owner or admin   → permission-denied (403)
//
// Writes run in one transaction with their activity entry, write first
// and log second, so a rejected or failed write leaves no entry behind.
package section

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/acl"
	"github.com/yanizio/sitedesk/internal/activity"
	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/database"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/validate"
	"github.com/yanizio/sitedesk/internal/website"
)

// Service wires the section store to the pool, the website store, and
// the activity log.
type Service struct {
	db       *sqlx.DB
	store    Store
	websites website.Store
	log      *activity.Log
}

// NewService returns a Service.
func NewService(db *sqlx.DB, log *activity.Log) *Service {
	return &Service{db: db, log: log}
}

// List returns the sections of websiteID in display order.
func (s *Service) List(ctx context.Context, who *identity.Identity, websiteID uint64) ([]Section, error) {
	if _, err := s.readable(ctx, who, websiteID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, s.db, websiteID)
}

// Get returns one section of websiteID.
func (s *Service) Get(ctx context.Context, who *identity.Identity, websiteID, id uint64) (*Section, error) {
	if _, err := s.readable(ctx, who, websiteID); err != nil {
		return nil, err
	}
	return s.store.ByID(ctx, s.db, websiteID, id)
}

// Create adds a section to websiteID and logs an update entry.
func (s *Service) Create(ctx context.Context, who *identity.Identity, websiteID uint64, in CreateInput) (*Section, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	sec := &Section{
		WebsiteID: websiteID,
		Name:      in.Name,
		Key:       in.Key,
		Content:   in.content(),
		Order:     in.Order,
	}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.writable(ctx, tx, who, websiteID); err != nil {
			return err
		}
		if err := s.store.Insert(ctx, tx, sec); err != nil {
			return conflict(err, sec.Key, websiteID)
		}
		return s.record(ctx, tx, who, sec, "created")
	})
	if err != nil {
		return nil, err
	}
	return sec, nil
}

// Update applies in to section id and logs an update entry.
func (s *Service) Update(ctx context.Context, who *identity.Identity, websiteID, id uint64, in UpdateInput) (*Section, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var sec *Section
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.writable(ctx, tx, who, websiteID); err != nil {
			return err
		}
		var err error
		if sec, err = s.store.ByID(ctx, tx, websiteID, id); err != nil {
			return err
		}
		in.apply(sec)
		if err := s.store.Update(ctx, tx, sec); err != nil {
			return conflict(err, sec.Key, websiteID)
		}
		return s.record(ctx, tx, who, sec, "updated")
	})
	if err != nil {
		return nil, err
	}
	return sec, nil
}

// Delete removes section id and logs an update entry.
func (s *Service) Delete(ctx context.Context, who *identity.Identity, websiteID, id uint64) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.writable(ctx, tx, who, websiteID); err != nil {
			return err
		}
		sec, err := s.store.ByID(ctx, tx, websiteID, id)
		if err != nil {
			return err
		}
		if err := s.store.Delete(ctx, tx, sec.ID); err != nil {
			return err
		}
		return s.record(ctx, tx, who, sec, "deleted")
	})
}

func (s *Service) readable(ctx context.Context, who *identity.Identity, websiteID uint64) (*website.Website, error) {
	w, err := s.websites.ByID(ctx, s.db, websiteID)
	if err != nil {
		return nil, err
	}
	if !acl.CanAct(who, w) {
		return nil, fmt.Errorf("website %d: %w", websiteID, apperr.ErrNotFound)
	}
	return w, nil
}

func (s *Service) writable(ctx context.Context, q sqlx.QueryerContext, who *identity.Identity, websiteID uint64) (*website.Website, error) {
	w, err := s.websites.ByID(ctx, q, websiteID)
	if err != nil {
		return nil, err
	}
	if err := acl.Authorize(who, w); err != nil {
		return nil, fmt.Errorf("website %d: %w", websiteID, err)
	}
	return w, nil
}

func (s *Service) record(ctx context.Context, tx sqlx.ExtContext, who *identity.Identity, sec *Section, verb string) error {
	return s.log.Record(ctx, tx, activity.Event{
		WebsiteID:   sec.WebsiteID,
		Type:        activity.TypeUpdate,
		Description: fmt.Sprintf("Section '%s' %s", sec.Name, verb),
		Actor:       activity.Actor(who.ID),
	})
}

func conflict(err error, key string, websiteID uint64) error {
	if errors.Is(err, apperr.ErrConflict) {
		return fmt.Errorf("section key %q already exists on website %d: %w", key, websiteID, apperr.ErrConflict)
	}
	return err
}
