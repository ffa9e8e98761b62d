package analytics

import (
	"context"
	"database/sql/driver"
	"math/rand/v2"
	"net"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitedesk/internal/activity"
	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/requestinfo"
	"github.com/yanizio/sitedesk/internal/ua"
	"github.com/yanizio/sitedesk/internal/website"
)

var (
	deltaRe   = regexp.MustCompile(`^[+-]\d+\.\d%$`)
	percentRe = regexp.MustCompile(`^\d+(\.\d)?%$`)
	clockRe   = regexp.MustCompile(`^\d+:\d{2}$`)
)

func parseDelta(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	require.NoError(t, err, s)
	return v
}

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"":       RangeMonth,
		"week":   RangeWeek,
		"Month":  RangeMonth,
		" year ": RangeYear,
	}
	for in, want := range cases {
		got, err := ParseTimeRange(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTimeRange("decade")
	assert.True(t, apperr.IsValidation(err))
}

func TestPlaceholderDetailRanges(t *testing.T) {
	p := NewPlaceholder(rand.NewPCG(1, 2))

	for _, tr := range []TimeRange{RangeWeek, RangeMonth, RangeYear} {
		d := deltaRanges[tr]
		for i := 0; i < 200; i++ {
			m := p.Detail(tr)

			assert.GreaterOrEqual(t, m.TotalVisitors, 100)
			assert.LessOrEqual(t, m.TotalVisitors, 5000)
			assert.GreaterOrEqual(t, m.PageViews, int(1.5*float64(m.TotalVisitors))-1)
			assert.LessOrEqual(t, m.PageViews, 4*m.TotalVisitors)
			assert.Regexp(t, percentRe, m.BounceRate)
			assert.Regexp(t, clockRe, m.AvgSessionDuration)

			for k, s := range []string{m.VisitorsDelta, m.PageViewsDelta, m.BounceRateDelta, m.SessionDurationDelta} {
				require.Regexp(t, deltaRe, s)
				v := parseDelta(t, s)
				bounds := d[k]
				assert.GreaterOrEqual(t, v, bounds.lo-0.05, "%s delta %d", tr, k)
				assert.LessOrEqual(t, v, bounds.hi+0.05, "%s delta %d", tr, k)
			}

			require.Len(t, m.TopPages, topPageCount)
			seen := map[string]bool{}
			for j, tp := range m.TopPages {
				assert.False(t, seen[tp.Path], "duplicate path %s", tp.Path)
				seen[tp.Path] = true
				if j > 0 {
					assert.GreaterOrEqual(t, m.TopPages[j-1].Views, tp.Views)
				}
			}
		}
	}
}

func TestPlaceholderSummaryRanges(t *testing.T) {
	p := NewPlaceholder(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		m := p.Summary()
		assert.GreaterOrEqual(t, m.Visitors, 50)
		assert.LessOrEqual(t, m.Visitors, 500)
		assert.GreaterOrEqual(t, m.PageViews, 2*m.Visitors)
		assert.LessOrEqual(t, m.PageViews, 5*m.Visitors)
		assert.Regexp(t, clockRe, m.AvgTime)
		assert.Regexp(t, percentRe, m.BounceRate)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "+12.3%", formatDelta(12.34))
	assert.Equal(t, "+0.0%", formatDelta(0))
	assert.Equal(t, "-4.5%", formatDelta(-4.5))
	assert.Equal(t, "1:05", formatDuration(65))
	assert.Equal(t, "5:00", formatDuration(300))
}

/*──────────────────────────── service ──────────────────────────────────────*/

type fakeSites struct {
	rows map[uint64]*website.Website
}

func (f fakeSites) Get(_ context.Context, who *identity.Identity, id uint64) (*website.Website, error) {
	w, ok := f.rows[id]
	if !ok || !(who.IsAgencyAdmin || who.ID == w.OwnerID) {
		return nil, apperr.ErrNotFound
	}
	return w, nil
}

func (f fakeSites) First(_ context.Context, who *identity.Identity) (*website.Website, error) {
	var best *website.Website
	for _, w := range f.rows {
		if !(who.IsAgencyAdmin || who.ID == w.OwnerID) {
			continue
		}
		if best == nil || w.ID < best.ID {
			best = w
		}
	}
	if best == nil {
		return nil, apperr.ErrNotFound
	}
	return best, nil
}

type fakeRecent map[uint64][]activity.Entry

func (f fakeRecent) Recent(_ context.Context, id uint64) ([]activity.Entry, error) {
	return f[id], nil
}

func newAnalytics() *Service {
	sites := fakeSites{rows: map[uint64]*website.Website{
		4: {ID: 4, OwnerID: 1, Name: "Acme", Domain: "a.example.com", Status: website.StatusLive},
		9: {ID: 9, OwnerID: 7, Name: "Other", Domain: "o.example.com", Status: website.StatusOffline},
	}}
	recent := fakeRecent{4: {
		{ID: 2, WebsiteID: 4, Description: "Section 'Hero' created", Type: activity.TypeUpdate},
		{ID: 1, WebsiteID: 4, Description: "Website 'Acme' created", Type: activity.TypeSystem},
	}}
	return NewService(sites, recent, NewPlaceholder(rand.NewPCG(5, 6)))
}

func TestDetailVisibility(t *testing.T) {
	svc := newAnalytics()
	owner := &identity.Identity{ID: 1, IsClient: true}
	stranger := &identity.Identity{ID: 2, IsClient: true}

	d, err := svc.Detail(context.Background(), owner, 4, RangeWeek)
	require.NoError(t, err)
	assert.Equal(t, RangeWeek, d.TimeRange)
	assert.Equal(t, Source, d.Source)

	_, err = svc.Detail(context.Background(), stranger, 4, RangeWeek)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Detail(context.Background(), owner, 404, RangeMonth)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// An agency admin who owns nothing still gets the first website.
func TestSummaryAdminWithoutWebsites(t *testing.T) {
	svc := newAnalytics()
	admin := &identity.Identity{ID: 50, IsAgencyAdmin: true}

	s, err := svc.Summary(context.Background(), admin, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), s.WebsiteID)
	assert.Equal(t, "a.example.com", s.WebsiteURL)
	assert.Equal(t, website.StatusLive, s.Status)
	require.Len(t, s.RecentActivity, 2)
	assert.Equal(t, "Section 'Hero' created", s.RecentActivity[0].Description)
	assert.Equal(t, Source, s.Source)
}

func TestSummaryExplicitWebsite(t *testing.T) {
	svc := newAnalytics()
	admin := &identity.Identity{ID: 50, IsAgencyAdmin: true}
	owner := &identity.Identity{ID: 1, IsClient: true}
	nine := uint64(9)

	s, err := svc.Summary(context.Background(), admin, &nine)
	require.NoError(t, err)
	assert.Equal(t, "Other", s.WebsiteName)

	_, err = svc.Summary(context.Background(), owner, &nine)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSummaryNoWebsites(t *testing.T) {
	svc := newAnalytics()
	_, err := svc.Summary(context.Background(), &identity.Identity{ID: 3, IsClient: true}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

/*──────────────────────────── tracking ─────────────────────────────────────*/

type fakeDomains map[string]*website.Website

func (f fakeDomains) ActiveByDomain(_ context.Context, d string) (*website.Website, error) {
	if w, ok := f[d]; ok {
		return w, nil
	}
	return nil, apperr.ErrNotFound
}

func newTracker(t *testing.T) (*Tracker, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tr := NewTracker(sqlx.NewDb(raw, "mysql"), fakeDomains{
		"a.example.com": {ID: 4, OwnerID: 1, Domain: "a.example.com", IsActive: true},
	})
	tr.now = func() time.Time { return at }
	return tr, mock, at
}

func TestTrackStoresVisitAndSession(t *testing.T) {
	tr, mock, at := newTracker(t)
	rawUA := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124.0.0.0 Safari/537.36"
	info := &requestinfo.Info{
		IP:      net.ParseIP("203.0.113.9"),
		Country: "NL",
		UA:      ua.Info{Device: ua.DeviceDesktop, Raw: rawUA},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO page_visit")).
		WithArgs(uint64(4), "/pricing", "203.0.113.9", rawUA, "https://news.example/",
			"NL", "desktop", at, "s-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs(uint64(4), "s-1", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := tr.Track(context.Background(), TrackInput{
		Domain:    "a.example.com",
		Path:      "pricing?utm=x",
		Referrer:  "https://news.example/",
		SessionID: "s-1",
	}, info)
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackWithoutSession(t *testing.T) {
	tr, mock, _ := newTracker(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO page_visit")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := tr.Track(context.Background(), TrackInput{Domain: "a.example.com"},
		&requestinfo.Info{UA: ua.Info{Device: ua.DeviceMobile, Raw: "x"}})
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackSkipsBots(t *testing.T) {
	tr, mock, _ := newTracker(t)

	res, err := tr.Track(context.Background(), TrackInput{Domain: "a.example.com"},
		&requestinfo.Info{UA: ua.Info{IsBot: true}})
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Equal(t, "bot", res.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackUnknownDomain(t *testing.T) {
	tr, mock, _ := newTracker(t)

	_, err := tr.Track(context.Background(), TrackInput{Domain: "nope.example"},
		&requestinfo.Info{UA: ua.Info{Raw: "x"}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = tr.Track(context.Background(), TrackInput{}, nil)
	assert.True(t, apperr.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// runes matches a valid UTF-8 string argument of exactly n characters.
type runes int

func (n runes) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && utf8.ValidString(s) && utf8.RuneCountInString(s) == int(n)
}

func TestTrackCutsLongValuesOnRuneBoundaries(t *testing.T) {
	tr, mock, at := newTracker(t)
	rawUA := "Mozilla/5.0 (X11; Linux x86_64) Firefox/125.0"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO page_visit")).
		WithArgs(uint64(4), runes(255), nil, rawUA, runes(500),
			nil, "desktop", at, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := tr.Track(context.Background(), TrackInput{
		Domain:   "a.example.com",
		Path:     "/blog/" + strings.Repeat("é", 300),
		Referrer: "https://h.example/" + strings.Repeat("ü", 600),
	}, &requestinfo.Info{UA: ua.Info{Device: ua.DeviceDesktop, Raw: rawUA}})
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptional(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "NL", 2, "NL"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"two-byte runes", "h" + strings.Repeat("ü", 400), 250, "h" + strings.Repeat("ü", 249)},
		{"four-byte runes", strings.Repeat("🚀", 10), 4, strings.Repeat("🚀", 4)},
		{"no limit", strings.Repeat("é", 600), 0, strings.Repeat("é", 600)},
		{"invalid bytes", "ref\xff", 0, "ref\uFFFD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := optional(tc.in, tc.limit)
			require.NotNil(t, got)
			assert.True(t, utf8.ValidString(*got))
			assert.Equal(t, tc.want, *got)
		})
	}
	assert.Nil(t, optional("", 10))
}
