// internal/activity/log.go
//
// The single writer and reader of the activity log.
//
// Context
// -------
// Website and section services emit an Event after their write succeeds,
// inside the same transaction:
//
//	database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
//	        if err := store.Insert(ctx, tx, w); err != nil {
//	                return err            // no entry is written
//	        }
//	        return log.Record(ctx, tx, activity.Event{…})
//	})
//
// A failed write therefore never produces an entry, and a failed append
// rolls the write back.
package activity

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/metrics"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
	RecentLimit  = 5
)

// Log records and lists entries.
type Log struct {
	db    *sqlx.DB
	store Store
}

// NewLog returns a Log reading from db.
func NewLog(db *sqlx.DB) *Log { return &Log{db: db} }

// Record appends ev using tx, which must be the transaction that performed
// the triggering write.
func (l *Log) Record(ctx context.Context, tx sqlx.ExtContext, ev Event) error {
	if err := ev.check(); err != nil {
		return err
	}
	if _, err := l.store.Append(ctx, tx, ev); err != nil {
		return err
	}
	metrics.ActivityEntriesTotal.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

// List returns up to limit entries for websiteID, newest first.  limit is
// clamped to [1, MaxLimit]; zero or negative means DefaultLimit.
func (l *Log) List(ctx context.Context, websiteID uint64, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return l.store.ListByWebsite(ctx, l.db, websiteID, limit)
}

// Recent returns the five newest entries for websiteID.
func (l *Log) Recent(ctx context.Context, websiteID uint64) ([]Entry, error) {
	return l.store.ListByWebsite(ctx, l.db, websiteID, RecentLimit)
}
