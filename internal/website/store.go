// internal/website/store.go
//
// Query helpers for the `website` table.
//
// Context
// -------
// Helpers take sqlx.ExtContext / sqlx.QueryerContext so services can run
// them on the pool or inside database.WithTx.  The owner filter is a
// *uint64 produced by acl.Scope: nil lists every row.
package website

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/database"
)

const columns = `id, owner_id, name, domain, status, description, is_active,
       created_at, updated_at`

// Store reads and writes websites.
type Store struct{}

// Insert creates a row and sets w.ID.
func (Store) Insert(ctx context.Context, db sqlx.ExtContext, w *Website) error {
	const q = `
        INSERT INTO website (owner_id, name, domain, status, description, is_active)
        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q,
		w.OwnerID, w.Name, w.Domain, string(w.Status), w.Description, w.IsActive)
	if err != nil {
		return fmt.Errorf("insert website %q: %w", w.Domain, database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert website id: %w", err)
	}
	w.ID = uint64(id)
	return nil
}

// ByID fetches one website regardless of owner.
func (Store) ByID(ctx context.Context, db sqlx.QueryerContext, id uint64) (*Website, error) {
	q := `SELECT ` + columns + ` FROM website WHERE id = ? LIMIT 1`
	var w Website
	if err := sqlx.GetContext(ctx, db, &w, q, id); err != nil {
		return nil, fmt.Errorf("website %d: %w", id, database.Classify(err))
	}
	return &w, nil
}

// ActiveByDomain resolves an active website by its domain.
func (Store) ActiveByDomain(ctx context.Context, db sqlx.QueryerContext, domain string) (*Website, error) {
	q := `SELECT ` + columns + ` FROM website WHERE domain = ? AND is_active = TRUE LIMIT 1`
	var w Website
	if err := sqlx.GetContext(ctx, db, &w, q, domain); err != nil {
		return nil, fmt.Errorf("website %q: %w", domain, database.Classify(err))
	}
	return &w, nil
}

// List returns websites ordered by id, limited to owner when non-nil.
func (Store) List(ctx context.Context, db sqlx.QueryerContext, owner *uint64) ([]Website, error) {
	q := `SELECT ` + columns + ` FROM website`
	args := []any{}
	if owner != nil {
		q += ` WHERE owner_id = ?`
		args = append(args, *owner)
	}
	q += ` ORDER BY id`

	rows := make([]Website, 0, 8)
	if err := sqlx.SelectContext(ctx, db, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	return rows, nil
}

// First returns the lowest-id website within owner's scope.
func (Store) First(ctx context.Context, db sqlx.QueryerContext, owner *uint64) (*Website, error) {
	q := `SELECT ` + columns + ` FROM website`
	args := []any{}
	if owner != nil {
		q += ` WHERE owner_id = ?`
		args = append(args, *owner)
	}
	q += ` ORDER BY id LIMIT 1`

	var w Website
	if err := sqlx.GetContext(ctx, db, &w, q, args...); err != nil {
		return nil, fmt.Errorf("first website: %w", database.Classify(err))
	}
	return &w, nil
}

// Update writes every mutable column.  owner_id is never written.
func (Store) Update(ctx context.Context, db sqlx.ExtContext, w *Website) error {
	const q = `
        UPDATE website
        SET    name = ?, domain = ?, status = ?, description = ?, is_active = ?
        WHERE  id = ?`
	if _, err := db.ExecContext(ctx, q,
		w.Name, w.Domain, string(w.Status), w.Description, w.IsActive, w.ID); err != nil {
		return fmt.Errorf("update website %d: %w", w.ID, database.Classify(err))
	}
	return nil
}

// Delete removes a website; sections and activity cascade.
func (Store) Delete(ctx context.Context, db sqlx.ExtContext, id uint64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM website WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete website %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("website %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
