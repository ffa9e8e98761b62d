// internal/section/store.go
//
// Query helpers for the `website_section` table.  `key` is a reserved
// word in MySQL, so it is always back-quoted.
package section

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/database"
)

const columns = "id, website_id, name, `key`, content, sort_order"

// Store reads and writes sections.
type Store struct{}

// Insert creates a row and sets s.ID.
func (Store) Insert(ctx context.Context, db sqlx.ExtContext, s *Section) error {
	const q = "INSERT INTO website_section (website_id, name, `key`, content, sort_order) VALUES (?, ?, ?, ?, ?)"
	res, err := db.ExecContext(ctx, q, s.WebsiteID, s.Name, s.Key, s.Content, s.Order)
	if err != nil {
		return fmt.Errorf("insert section %q: %w", s.Key, database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert section id: %w", err)
	}
	s.ID = uint64(id)
	return nil
}

// ByID fetches section id under websiteID.
func (Store) ByID(ctx context.Context, db sqlx.QueryerContext, websiteID, id uint64) (*Section, error) {
	q := `SELECT ` + columns + ` FROM website_section WHERE id = ? AND website_id = ? LIMIT 1`
	var s Section
	if err := sqlx.GetContext(ctx, db, &s, q, id, websiteID); err != nil {
		return nil, fmt.Errorf("section %d: %w", id, database.Classify(err))
	}
	return &s, nil
}

// List returns a website's sections in display order.
func (Store) List(ctx context.Context, db sqlx.QueryerContext, websiteID uint64) ([]Section, error) {
	q := `SELECT ` + columns + ` FROM website_section WHERE website_id = ? ORDER BY sort_order, id`
	rows := make([]Section, 0, 8)
	if err := sqlx.SelectContext(ctx, db, &rows, q, websiteID); err != nil {
		return nil, fmt.Errorf("list sections for website %d: %w", websiteID, err)
	}
	return rows, nil
}

// Update writes every mutable column.
func (Store) Update(ctx context.Context, db sqlx.ExtContext, s *Section) error {
	const q = "UPDATE website_section SET name = ?, `key` = ?, content = ?, sort_order = ? WHERE id = ?"
	if _, err := db.ExecContext(ctx, q, s.Name, s.Key, s.Content, s.Order, s.ID); err != nil {
		return fmt.Errorf("update section %d: %w", s.ID, database.Classify(err))
	}
	return nil
}

// Delete removes one section.
func (Store) Delete(ctx context.Context, db sqlx.ExtContext, id uint64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM website_section WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete section %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("section %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
