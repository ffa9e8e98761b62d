// internal/activity/store.go
//
// Query helpers for the `activity_log` table.
//
// Notes
// -----
// • There is no update or delete helper.  Rows leave only by cascade when
//   their website is removed.
// • user_name is derived in SQL: "first last" trimmed, else username, else
//   NULL when the actor is gone.
package activity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const selectEntries = `
        SELECT a.id, a.website_id, a.description, a.type, a.created_at, a.identity_id,
               CASE WHEN i.id IS NULL THEN NULL
                    ELSE COALESCE(NULLIF(TRIM(CONCAT(i.first_name, ' ', i.last_name)), ''),
                                  i.username)
               END AS user_name
        FROM   activity_log a
        LEFT   JOIN identity i ON i.id = a.identity_id`

// Store reads and appends entries.
type Store struct{}

// Append inserts one entry and returns its id.
func (Store) Append(ctx context.Context, db sqlx.ExtContext, e Event) (uint64, error) {
	const q = `
        INSERT INTO activity_log (website_id, description, type, identity_id)
        VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, e.WebsiteID, e.Description, string(e.Type), e.Actor)
	if err != nil {
		return 0, fmt.Errorf("append activity for website %d: %w", e.WebsiteID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append activity id: %w", err)
	}
	return uint64(id), nil
}

// ListByWebsite returns up to limit entries, newest first.
func (Store) ListByWebsite(ctx context.Context, db sqlx.QueryerContext, websiteID uint64, limit int) ([]Entry, error) {
	q := selectEntries + `
        WHERE  a.website_id = ?
        ORDER  BY a.created_at DESC, a.id DESC
        LIMIT  ?`
	rows := make([]Entry, 0, limit)
	if err := sqlx.SelectContext(ctx, db, &rows, q, websiteID, limit); err != nil {
		return nil, fmt.Errorf("list activity for website %d: %w", websiteID, err)
	}
	return rows, nil
}
