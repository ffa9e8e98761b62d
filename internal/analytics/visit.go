// internal/analytics/visit.go
//
// Visit ingestion for POST /api/track.
//
// Workflow
// --------
//  1. Validate the payload and resolve an active website by domain.
//  2. Drop crawler traffic (User-Agent flagged as bot).
//  3. In one transaction, insert a page_visit row and upsert the
//     visit_session row for (website, session_id) when a session id is
//     present.
//
// The dashboard does not read these tables yet; they are collected so a
// real aggregation can replace the placeholder generator later.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitedesk/internal/database"
	"github.com/yanizio/sitedesk/internal/metrics"
	"github.com/yanizio/sitedesk/internal/requestinfo"
	"github.com/yanizio/sitedesk/internal/slug"
	"github.com/yanizio/sitedesk/internal/validate"
	"github.com/yanizio/sitedesk/internal/website"
)

// DomainResolver finds the website a visit belongs to.
type DomainResolver interface {
	ActiveByDomain(ctx context.Context, domain string) (*website.Website, error)
}

// TrackInput is the POST /api/track payload.
type TrackInput struct {
	Domain    string `json:"domain"     validate:"required,max=255"`
	Path      string `json:"path"       validate:"max=2048"`
	Referrer  string `json:"referrer"   validate:"max=2048"`
	SessionID string `json:"session_id" validate:"max=255"`
}

// TrackResult tells the caller whether the visit was stored.
type TrackResult struct {
	Recorded bool   `json:"recorded"`
	Reason   string `json:"reason,omitempty"`
}

// Visit mirrors one page_visit row.
type Visit struct {
	WebsiteID uint64
	Path      string
	VisitorIP *string
	UserAgent *string
	Referrer  *string
	Country   *string
	Device    *string
	VisitTime time.Time
	SessionID *string
}

// Tracker stores visits.
type Tracker struct {
	db    *sqlx.DB
	sites DomainResolver
	now   func() time.Time
}

// NewTracker returns a Tracker.
func NewTracker(db *sqlx.DB, sites DomainResolver) *Tracker {
	return &Tracker{db: db, sites: sites, now: time.Now}
}

// Track records one page view described by in and info.  info may be nil
// when the Enrich middleware did not run.
func (t *Tracker) Track(ctx context.Context, in TrackInput, info *requestinfo.Info) (TrackResult, error) {
	in.Domain = strings.TrimSpace(in.Domain)
	if err := validate.Struct(in); err != nil {
		return TrackResult{}, err
	}
	if info == nil {
		info = &requestinfo.Info{}
	}
	if info.UA.IsBot {
		metrics.PageVisitsTotal.WithLabelValues("bot").Inc()
		return TrackResult{Recorded: false, Reason: "bot"}, nil
	}

	w, err := t.sites.ActiveByDomain(ctx, in.Domain)
	if err != nil {
		return TrackResult{}, err
	}

	v := Visit{
		WebsiteID: w.ID,
		Path:      slug.Path(in.Path),
		UserAgent: optional(info.UA.Raw, 0),
		Referrer:  optional(firstNonEmpty(in.Referrer, info.Referrer), 500),
		Country:   optional(info.Country, 2),
		Device:    optional(string(info.UA.Device), 16),
		VisitTime: t.now().UTC(),
		SessionID: optional(strings.TrimSpace(in.SessionID), 255),
	}
	if info.IP != nil {
		v.VisitorIP = optional(info.IP.String(), 45)
	}

	err = database.WithTx(ctx, t.db, func(tx *sqlx.Tx) error {
		if err := insertVisit(ctx, tx, &v); err != nil {
			return err
		}
		if v.SessionID == nil {
			return nil
		}
		return upsertSession(ctx, tx, v.WebsiteID, *v.SessionID, v.VisitTime)
	})
	if err != nil {
		return TrackResult{}, err
	}
	metrics.PageVisitsTotal.WithLabelValues("stored").Inc()
	return TrackResult{Recorded: true}, nil
}

func insertVisit(ctx context.Context, db sqlx.ExtContext, v *Visit) error {
	const q = `
        INSERT INTO page_visit
               (website_id, path, visitor_ip, user_agent, referrer, country,
                device, visit_time, session_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, q,
		v.WebsiteID, v.Path, v.VisitorIP, v.UserAgent, v.Referrer, v.Country,
		v.Device, v.VisitTime, v.SessionID); err != nil {
		return fmt.Errorf("insert page visit for website %d: %w", v.WebsiteID, err)
	}
	return nil
}

// upsertSession opens a session on the first page and extends it on every
// later one.  A session with more than one page is no longer a bounce.
func upsertSession(ctx context.Context, db sqlx.ExtContext, websiteID uint64, sessionID string, at time.Time) error {
	const q = `
        INSERT INTO visit_session (website_id, session_id, start_time, pages_visited, is_bounce)
        VALUES (?, ?, ?, 1, TRUE)
        ON DUPLICATE KEY UPDATE
               pages_visited = pages_visited + 1,
               is_bounce     = FALSE,
               end_time      = VALUES(start_time),
               duration      = TIMESTAMPDIFF(SECOND, start_time, VALUES(start_time))`
	if _, err := db.ExecContext(ctx, q, websiteID, sessionID, at); err != nil {
		return fmt.Errorf("upsert visit session %q: %w", sessionID, database.Classify(err))
	}
	return nil
}

// optional returns nil for "" and otherwise s as valid UTF-8, cut to limit
// characters when limit > 0.
func optional(s string, limit int) *string {
	if s == "" {
		return nil
	}
	s = slug.Truncate(s, limit)
	return &s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
