// components/analytics/analytics.go
//
// Sitedesk analytics component – dashboard read models and visit
// ingestion.
//
// Routes (mounted under /api)
// ---------------------------
//
//	GET  /analytics/data?website_id=N&time_range=week|month|year   bearer
//	GET  /dashboard/summary[?website_id=N]                         bearer
//	POST /track                                                    public
//
// Notes
// -----
// • Metric figures are placeholders and say so in their `source` field.
// • /track answers 202 whether or not the visit was stored; the body's
//   `recorded` flag tells the two apart.
//
//------------------------------------------------------------------------------

package analytics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sitedesk/internal/analytics"
	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/auth"
	"github.com/yanizio/sitedesk/internal/component"
	"github.com/yanizio/sitedesk/internal/requestinfo"
	"github.com/yanizio/sitedesk/internal/respond"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves dashboard metrics and the tracking beacon.
type Component struct{}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "analytics" }

// Routes registers the analytics endpoints on r.
func (c *Component) Routes(r chi.Router, env *component.Env) {
	h := &handlers{env: env}

	r.With(requestinfo.Enrich(env.GeoIP, env.Config.HTTP.TrustProxy)).Post("/track", h.track)

	r.Group(func(pr chi.Router) {
		pr.Use(env.Authenticator.Middleware)
		pr.Get("/analytics/data", h.detail)
		pr.Get("/dashboard/summary", h.summary)
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type handlers struct{ env *component.Env }

func (h *handlers) detail(w http.ResponseWriter, r *http.Request) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	if q.Get("website_id") == "" {
		respond.Error(w, r, apperr.Invalid("website_id", "this field is required"))
		return
	}
	id, err := websiteID(q.Get("website_id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	tr, err := analytics.ParseTimeRange(q.Get("time_range"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out, err := h.env.Analytics.Detail(r.Context(), who, id, tr)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var target *uint64
	if raw := r.URL.Query().Get("website_id"); raw != "" {
		id, err := websiteID(raw)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		target = &id
	}
	out, err := h.env.Analytics.Summary(r.Context(), who, target)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *handlers) track(w http.ResponseWriter, r *http.Request) {
	var in analytics.TrackInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	res, err := h.env.Tracker.Track(r.Context(), in, requestinfo.FromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, res)
}

func websiteID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("website_id", "must be a positive integer")
	}
	return id, nil
}
