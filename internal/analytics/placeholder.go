// internal/analytics/placeholder.go
//
// Placeholder metric generator.
//
// Context
// -------
// Dashboard numbers are not computed from page_visit or visit_session.
// They are drawn from fixed ranges so the client has realistic-looking
// data to render, and every response that carries them is labelled with
// `"source": "placeholder"`.  Nothing in this file reads the database.
//
// Ranges
// ------
//	detail   visitors 100..5000, page views visitors × U(1.5, 4),
//	         bounce U(30, 70) %, avg session 60..300 s
//	summary  visitors 50..500, page views visitors × U(2, 5),
//	         avg time 1..5 min, bounce 30..70 %
//
// Deltas depend on the time range; see deltaRanges.
package analytics

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// Source labels generated figures in responses.
const Source = "placeholder"

// pagePaths is the pool top pages are sampled from.
var pagePaths = []string{
	"/", "/about", "/services", "/portfolio", "/contact",
	"/blog", "/testimonials", "/careers", "/pricing",
}

const topPageCount = 5

type span struct{ lo, hi float64 }

// deltaRanges holds visitors, page views, bounce rate, and session
// duration delta bounds per time range.
var deltaRanges = map[TimeRange][4]span{
	RangeWeek:  {{-10, 20}, {-15, 25}, {-5, 5}, {-10, 10}},
	RangeMonth: {{-5, 35}, {-10, 40}, {-10, 8}, {-5, 15}},
	RangeYear:  {{15, 80}, {20, 90}, {-15, -2}, {5, 30}},
}

// TopPage is one row of the top-pages table.
type TopPage struct {
	Path       string `json:"path"`
	Views      int    `json:"views"`
	AvgTime    string `json:"avgTime"`
	BounceRate string `json:"bounceRate"`
}

// DetailMetrics is the generated part of the detail response.
type DetailMetrics struct {
	TotalVisitors        int       `json:"totalVisitors"`
	VisitorsDelta        string    `json:"visitorsDelta"`
	PageViews            int       `json:"pageViews"`
	PageViewsDelta       string    `json:"pageViewsDelta"`
	AvgSessionDuration   string    `json:"avgSessionDuration"`
	SessionDurationDelta string    `json:"sessionDurationDelta"`
	BounceRate           string    `json:"bounceRate"`
	BounceRateDelta      string    `json:"bounceRateDelta"`
	TopPages             []TopPage `json:"topPages"`
}

// SummaryMetrics is the generated part of the summary response.
type SummaryMetrics struct {
	Visitors   int    `json:"visitors"`
	PageViews  int    `json:"pageViews"`
	AvgTime    string `json:"avgTime"`
	BounceRate string `json:"bounceRate"`
}

// Placeholder draws metrics from a seeded PRNG.  Safe for concurrent use.
type Placeholder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholder returns a generator over src.  A nil src seeds from the
// runtime's random source.
func NewPlaceholder(src rand.Source) *Placeholder {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Placeholder{rng: rand.New(src)}
}

// Detail generates the metrics for one website over tr.
func (p *Placeholder) Detail(tr TimeRange) DetailMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	visitors := p.intn(100, 5000)
	pageViews := float64(visitors) * p.uniform(1.5, 4.0)
	bounce := p.uniform(30, 70)
	session := p.intn(60, 300)

	d := deltaRanges[tr]
	out := DetailMetrics{
		TotalVisitors:        visitors,
		VisitorsDelta:        formatDelta(p.uniform(d[0].lo, d[0].hi)),
		PageViews:            int(pageViews),
		PageViewsDelta:       formatDelta(p.uniform(d[1].lo, d[1].hi)),
		AvgSessionDuration:   formatDuration(session),
		SessionDurationDelta: formatDelta(p.uniform(d[3].lo, d[3].hi)),
		BounceRate:           fmt.Sprintf("%.1f%%", bounce),
		BounceRateDelta:      formatDelta(p.uniform(d[2].lo, d[2].hi)),
	}

	perm := p.rng.Perm(len(pagePaths))[:topPageCount]
	out.TopPages = make([]TopPage, 0, topPageCount)
	for _, i := range perm {
		out.TopPages = append(out.TopPages, TopPage{
			Path:       pagePaths[i],
			Views:      int(p.uniform(0.05, 0.25) * pageViews),
			AvgTime:    fmt.Sprintf("%d:%02d", p.intn(0, 3), p.intn(10, 59)),
			BounceRate: fmt.Sprintf("%d%%", p.intn(20, 80)),
		})
	}
	sort.SliceStable(out.TopPages, func(i, j int) bool {
		return out.TopPages[i].Views > out.TopPages[j].Views
	})
	return out
}

// Summary generates the dashboard snapshot.
func (p *Placeholder) Summary() SummaryMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	visitors := p.intn(50, 500)
	return SummaryMetrics{
		Visitors:   visitors,
		PageViews:  int(float64(visitors) * p.uniform(2.0, 5.0)),
		AvgTime:    fmt.Sprintf("%d:%02d", p.intn(1, 5), p.intn(10, 59)),
		BounceRate: fmt.Sprintf("%d%%", p.intn(30, 70)),
	}
}

// intn returns an int in [lo, hi].
func (p *Placeholder) intn(lo, hi int) int { return lo + p.rng.IntN(hi-lo+1) }

// uniform returns a float in [lo, hi).
func (p *Placeholder) uniform(lo, hi float64) float64 { return lo + (hi-lo)*p.rng.Float64() }

// formatDelta renders v with an explicit sign and one decimal: "+12.3%".
func formatDelta(v float64) string { return fmt.Sprintf("%+.1f%%", v) }

// formatDuration renders seconds as m:ss.
func formatDuration(sec int) string { return fmt.Sprintf("%d:%02d", sec/60, sec%60) }
