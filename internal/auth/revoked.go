// internal/auth/revoked.go
//
// Logout denylist backed by the `revoked_token` table.
//
// Context
// -------
// Tokens are stateless, so logout records the token's jti until the token
// would have expired anyway.  Purge drops rows past that point; logout
// calls it after each revoke so the table stays small without a sweeper.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Revocations reads and writes the denylist.
type Revocations struct {
	db *sqlx.DB
}

// NewRevocations returns a Revocations on db.
func NewRevocations(db *sqlx.DB) *Revocations { return &Revocations{db: db} }

// Revoke denylists jti until expiresAt.  Revoking twice is a no-op.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	const q = `INSERT IGNORE INTO revoked_token (jti, expires_at) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, q, jti, expiresAt.UTC()); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

// IsRevoked reports whether jti is on the denylist.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT 1 FROM revoked_token WHERE jti = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, jti).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token %s: %w", jti, err)
	}
	return true, nil
}

// Purge deletes entries whose token has expired and returns the count.
func (r *Revocations) Purge(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM revoked_token WHERE expires_at < ?`
	res, err := r.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.RowsAffected()
}
