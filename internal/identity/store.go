// internal/identity/store.go
//
// Query helpers for the `identity` table.
//
// Context
// -------
// Each helper executes exactly one parameterised statement against a
// sqlx.ExtContext, so callers may pass the pool or an open transaction.
// Missing rows come back as apperr.ErrNotFound and unique-key hits as
// apperr.ErrConflict (via database.Classify).  A hit on the email key is
// reported as ErrEmailTaken so callers can tell it from a taken username.
//
// Notes
// -----
// • Column list matches the fields in Identity; update both together.
// • username and email are both unique, so ByLogin never has to choose
//   between two accounts.
package identity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/database"
)

const columns = `id, username, email, password_hash, first_name, last_name,
       phone, company, is_client, is_agency_admin, is_active,
       date_joined, updated_at`

// emailKey is the unique index on identity.email (migration 000003).
const emailKey = "uq_identity_email"

// ErrEmailTaken reports a unique-key hit on identity.email.
var ErrEmailTaken = fmt.Errorf("email is already registered: %w", apperr.ErrConflict)

// classify is database.Classify plus the email-key distinction.
func classify(err error) error {
	if database.IsDuplicateOn(err, emailKey) {
		return ErrEmailTaken
	}
	return database.Classify(err)
}

// Store reads and writes identities.
type Store struct{}

// Insert creates a row and sets i.ID.
func (Store) Insert(ctx context.Context, db sqlx.ExtContext, i *Identity) error {
	const q = `
        INSERT INTO identity
               (username, email, password_hash, first_name, last_name,
                phone, company, is_client, is_agency_admin, is_active)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q,
		i.Username, i.Email, i.PasswordHash, i.FirstName, i.LastName,
		i.Phone, i.Company, i.IsClient, i.IsAgencyAdmin, i.IsActive)
	if err != nil {
		return fmt.Errorf("insert identity %q: %w", i.Username, classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert identity id: %w", err)
	}
	i.ID = uint64(id)
	return nil
}

// ByID fetches one identity.
func (Store) ByID(ctx context.Context, db sqlx.QueryerContext, id uint64) (*Identity, error) {
	q := `SELECT ` + columns + ` FROM identity WHERE id = ? LIMIT 1`
	var i Identity
	if err := sqlx.GetContext(ctx, db, &i, q, id); err != nil {
		return nil, fmt.Errorf("identity %d: %w", id, database.Classify(err))
	}
	return &i, nil
}

// ByLogin matches either username or email.  One account's username may
// equal another's email, in which case the username row wins.
func (Store) ByLogin(ctx context.Context, db sqlx.QueryerContext, login string) (*Identity, error) {
	q := `SELECT ` + columns + `
        FROM   identity
        WHERE  username = ? OR email = ?
        ORDER  BY username = ? DESC, id
        LIMIT  1`
	var i Identity
	if err := sqlx.GetContext(ctx, db, &i, q, login, login, login); err != nil {
		return nil, fmt.Errorf("identity login %q: %w", login, database.Classify(err))
	}
	return &i, nil
}

// All lists every identity ordered by id.
func (Store) All(ctx context.Context, db sqlx.QueryerContext) ([]Identity, error) {
	q := `SELECT ` + columns + ` FROM identity ORDER BY id`
	rows := make([]Identity, 0, 16)
	if err := sqlx.SelectContext(ctx, db, &rows, q); err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return rows, nil
}

// UpdateProfile writes the editable profile columns.
func (Store) UpdateProfile(ctx context.Context, db sqlx.ExtContext, i *Identity) error {
	const q = `
        UPDATE identity
        SET    first_name = ?, last_name = ?, email = ?, phone = ?, company = ?
        WHERE  id = ?`
	// MySQL reports 0 affected rows for unchanged values, so existence is
	// the caller's job (ByID first).
	if _, err := db.ExecContext(ctx, q,
		i.FirstName, i.LastName, i.Email, i.Phone, i.Company, i.ID); err != nil {
		return fmt.Errorf("update identity %d: %w", i.ID, classify(err))
	}
	return nil
}
