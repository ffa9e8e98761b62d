// internal/analytics/service.go
//
// Dashboard read models.
//
// Context
// -------
// Both operations resolve a website through the same visibility rule as
// the website registry (owner or agency admin, otherwise not-found), then
// combine placeholder metrics with real website metadata.  The summary's
// recent activity is read from the activity log, not generated.
//
// Notes
// -----
// • A missing website and a hidden website both yield not-found.
package analytics

import (
	"context"

	"github.com/yanizio/sitedesk/internal/activity"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/website"
)

// Websites is the subset of website.Service the dashboard needs.
type Websites interface {
	Get(ctx context.Context, who *identity.Identity, id uint64) (*website.Website, error)
	First(ctx context.Context, who *identity.Identity) (*website.Website, error)
}

// RecentActivity is the subset of activity.Log the summary needs.
type RecentActivity interface {
	Recent(ctx context.Context, websiteID uint64) ([]activity.Entry, error)
}

// Detail is the GET /api/analytics/data body.
type Detail struct {
	WebsiteID uint64 `json:"websiteId"`
	DetailMetrics
	TimeRange TimeRange `json:"timeRange"`
	Source    string    `json:"source"`
}

// Summary is the GET /api/dashboard/summary body.
type Summary struct {
	WebsiteID   uint64         `json:"websiteId"`
	WebsiteURL  string         `json:"websiteUrl"`
	WebsiteName string         `json:"websiteName"`
	Status      website.Status `json:"status"`
	SummaryMetrics
	RecentActivity []activity.Entry `json:"recentActivity"`
	Source         string           `json:"source"`
}

// Service answers dashboard queries.
type Service struct {
	websites Websites
	activity RecentActivity
	gen      *Placeholder
}

// NewService returns a Service.  gen may be nil for a randomly seeded
// generator.
func NewService(websites Websites, recent RecentActivity, gen *Placeholder) *Service {
	if gen == nil {
		gen = NewPlaceholder(nil)
	}
	return &Service{websites: websites, activity: recent, gen: gen}
}

// Detail returns metrics for websiteID over tr.
func (s *Service) Detail(ctx context.Context, who *identity.Identity, websiteID uint64, tr TimeRange) (*Detail, error) {
	w, err := s.websites.Get(ctx, who, websiteID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		WebsiteID:     w.ID,
		DetailMetrics: s.gen.Detail(tr),
		TimeRange:     tr,
		Source:        Source,
	}, nil
}

// Summary returns the dashboard snapshot for websiteID, or for who's first
// visible website when websiteID is nil.
func (s *Service) Summary(ctx context.Context, who *identity.Identity, websiteID *uint64) (*Summary, error) {
	var (
		w   *website.Website
		err error
	)
	if websiteID != nil {
		w, err = s.websites.Get(ctx, who, *websiteID)
	} else {
		w, err = s.websites.First(ctx, who)
	}
	if err != nil {
		return nil, err
	}

	recent, err := s.activity.Recent(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		WebsiteID:      w.ID,
		WebsiteURL:     w.Domain,
		WebsiteName:    w.Name,
		Status:         w.Status,
		SummaryMetrics: s.gen.Summary(),
		RecentActivity: recent,
		Source:         Source,
	}, nil
}
