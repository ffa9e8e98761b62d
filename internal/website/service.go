// internal/website/service.go
//
// Website registry use-cases.
//
// Workflow (writes)
// -----------------
//  1. Validate and normalise the payload.
//  2. Open a transaction (database.WithTx).
//  3. Load + check visibility (update only).
//  4. Write the row.
//  5. Record the activity entry on the same transaction.
//
// Step 5 never runs when step 4 fails, and a failed step 5 rolls step 4
// back, so a website write and its log entry are all-or-nothing.
//
// Notes
// -----
// • Reads and single-object writes treat "exists but not yours" as
//   not-found so callers cannot probe for other owners' websites.
package website

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
)

// Service wires the store, the pool, and the activity log.
type Service struct {
	db    *sqlx.DB
	store Store
	log   *activity.Log
}

// NewService returns a Service.
func NewService(db *sqlx.DB, log *activity.Log) *Service {
	return &Service{db: db, log: log}
}

// List returns the websites who may see, ordered by id.
func (s *Service) List(ctx context.Context, who *identity.Identity) ([]Website, error) {
	return s.store.List(ctx, s.db, acl.Scope(who))
}

// Get returns website id if who may see it.
func (s *Service) Get(ctx context.Context, who *identity.Identity, id uint64) (*Website, error) {
	return s.visible(ctx, s.db, who, id)
}

// First returns who's lowest-id visible website.  Agency admins see every
// website, owned or not.
func (s *Service) First(ctx context.Context, who *identity.Identity) (*Website, error) {
	w, err := s.store.First(ctx, s.db, acl.Scope(who))
	if err != nil {
		return nil, fmt.Errorf("no websites available: %w", err)
	}
	return w, nil
}

// ActiveByDomain resolves a public, active website.  No identity is
// involved; visit tracking is anonymous.
func (s *Service) ActiveByDomain(ctx context.Context, domain string) (*Website, error) {
	return s.store.ActiveByDomain(ctx, s.db, NormalizeDomain(domain))
}

// Create persists a website owned by who and logs a system entry.
func (s *Service) Create(ctx context.Context, who *identity.Identity, in CreateInput) (*Website, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	w := &Website{
		OwnerID:  who.ID,
		Name:     in.Name,
		Domain:   in.Domain,
		Status:   in.Status,
		IsActive: true,
	}
	if in.Description != nil && *in.Description != "" {
		w.Description = in.Description
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.store.Insert(ctx, tx, w); err != nil {
			return conflict(err, w.Domain)
		}
		return s.log.Record(ctx, tx, activity.Event{
			WebsiteID:   w.ID,
			Type:        activity.TypeSystem,
			Description: fmt.Sprintf("Website '%s' created", w.Name),
			Actor:       activity.Actor(who.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.store.ByID(ctx, s.db, w.ID)
}

// Update applies in to website id and logs an update entry.
func (s *Service) Update(ctx context.Context, who *identity.Identity, id uint64, in UpdateInput) (*Website, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		w, err := s.visible(ctx, tx, who, id)
		if err != nil {
			return err
		}
		in.apply(w)
		if err := s.store.Update(ctx, tx, w); err != nil {
			return conflict(err, w.Domain)
		}
		return s.log.Record(ctx, tx, activity.Event{
			WebsiteID:   w.ID,
			Type:        activity.TypeUpdate,
			Description: fmt.Sprintf("Website '%s' updated", w.Name),
			Actor:       activity.Actor(who.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.store.ByID(ctx, s.db, id)
}

// Delete removes website id.  Its sections and activity go with it.
func (s *Service) Delete(ctx context.Context, who *identity.Identity, id uint64) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.visible(ctx, tx, who, id); err != nil {
			return err
		}
		return s.store.Delete(ctx, tx, id)
	})
}

func (s *Service) visible(ctx context.Context, q sqlx.QueryerContext, who *identity.Identity, id uint64) (*Website, error) {
	w, err := s.store.ByID(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if !acl.CanAct(who, w) {
		return nil, fmt.Errorf("website %d: %w", id, apperr.ErrNotFound)
	}
	return w, nil
}

func conflict(err error, domain string) error {
	if errors.Is(err, apperr.ErrConflict) {
		return fmt.Errorf("domain %q is already registered: %w", domain, apperr.ErrConflict)
	}
	return err
}
