// components/websites/websites.go
//
// Sitedesk websites component – website registry, sections, and the
// per-website activity log.
//
// Routes (mounted under /api, all bearer-protected)
// -------------------------------------------------
//
//	GET    /websites
//	POST   /websites
//	GET    /websites/{websiteID}
//	PUT    /websites/{websiteID}                 full replacement
//	PATCH  /websites/{websiteID}                 partial update
//	DELETE /websites/{websiteID}
//	GET    /websites/{websiteID}/sections
//	POST   /websites/{websiteID}/sections
//	GET    /websites/{websiteID}/sections/{sectionID}
//	PUT    /websites/{websiteID}/sections/{sectionID}
//	PATCH  /websites/{websiteID}/sections/{sectionID}
//	DELETE /websites/{websiteID}/sections/{sectionID}
//	GET    /websites/{websiteID}/activity?limit=N
//
// Notes
// -----
// • Visibility and permission rules live in the services; handlers only
//   decode, call, and respond.
// • A non-numeric id in the path is a 404, the same as an unknown id.
//
//------------------------------------------------------------------------------

package websites

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/auth"
	"github.com/yanizio/sitedesk/internal/component"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/respond"
	"github.com/yanizio/sitedesk/internal/section"
	"github.com/yanizio/sitedesk/internal/website"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves websites, sections, and activity.
type Component struct{}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "websites" }

// Routes registers the website tree on r.
func (c *Component) Routes(r chi.Router, env *component.Env) {
	h := &handlers{env: env}

	r.Route("/websites", func(wr chi.Router) {
		wr.Use(env.Authenticator.Middleware)

		wr.Get("/", h.listWebsites)
		wr.Post("/", h.createWebsite)

		wr.Route("/{websiteID}", func(one chi.Router) {
			one.Get("/", h.getWebsite)
			one.Put("/", h.replaceWebsite)
			one.Patch("/", h.patchWebsite)
			one.Delete("/", h.deleteWebsite)

			one.Get("/activity", h.listActivity)

			one.Route("/sections", func(sr chi.Router) {
				sr.Get("/", h.listSections)
				sr.Post("/", h.createSection)
				sr.Get("/{sectionID}", h.getSection)
				sr.Put("/{sectionID}", h.replaceSection)
				sr.Patch("/{sectionID}", h.patchSection)
				sr.Delete("/{sectionID}", h.deleteSection)
			})
		})
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

type handlers struct{ env *component.Env }

/*──────────────────────────── Websites ─────────────────────────────────────*/

func (h *handlers) listWebsites(w http.ResponseWriter, r *http.Request) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	list, err := h.env.Websites.List(r.Context(), who)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *handlers) createWebsite(w http.ResponseWriter, r *http.Request) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var in website.CreateInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	created, err := h.env.Websites.Create(r.Context(), who, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *handlers) getWebsite(w http.ResponseWriter, r *http.Request) {
	who, id, ok := h.websiteTarget(w, r)
	if !ok {
		return
	}
	site, err := h.env.Websites.Get(r.Context(), who, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, site)
}

func (h *handlers) replaceWebsite(w http.ResponseWriter, r *http.Request) {
	var in website.CreateInput
	h.updateWebsite(w, r, &in, func() website.UpdateInput { return in.Replacement() })
}

func (h *handlers) patchWebsite(w http.ResponseWriter, r *http.Request) {
	var in website.UpdateInput
	h.updateWebsite(w, r, &in, func() website.UpdateInput { return in })
}

// updateWebsite decodes into dst and applies the UpdateInput that build
// derives from it.
func (h *handlers) updateWebsite(w http.ResponseWriter, r *http.Request, dst any, build func() website.UpdateInput) {
	who, id, ok := h.websiteTarget(w, r)
	if !ok {
		return
	}
	if err := respond.Decode(w, r, dst); err != nil {
		respond.Error(w, r, err)
		return
	}
	site, err := h.env.Websites.Update(r.Context(), who, id, build())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, site)
}

func (h *handlers) deleteWebsite(w http.ResponseWriter, r *http.Request) {
	who, id, ok := h.websiteTarget(w, r)
	if !ok {
		return
	}
	if err := h.env.Websites.Delete(r.Context(), who, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

/*──────────────────────────── Activity ─────────────────────────────────────*/

func (h *handlers) listActivity(w http.ResponseWriter, r *http.Request) {
	who, id, ok := h.websiteTarget(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.Error(w, r, apperr.Invalid("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	if _, err := h.env.Websites.Get(r.Context(), who, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	entries, err := h.env.Activity.List(r.Context(), id, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

/*──────────────────────────── Sections ─────────────────────────────────────*/

func (h *handlers) listSections(w http.ResponseWriter, r *http.Request) {
	who, websiteID, ok := h.websiteTarget(w, r)
	if !ok {
		return
	}
	list, err := h.env.Sections.List(r.Context(), who, websiteID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *handlers) createSection(w http.ResponseWriter, r *http.Request) {
	who, websiteID, ok := h.websiteTarget(w, r)
	if !ok {
		return
	}
	var in section.CreateInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	created, err := h.env.Sections.Create(r.Context(), who, websiteID, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *handlers) getSection(w http.ResponseWriter, r *http.Request) {
	who, websiteID, sectionID, ok := h.sectionTarget(w, r)
	if !ok {
		return
	}
	sec, err := h.env.Sections.Get(r.Context(), who, websiteID, sectionID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, sec)
}

func (h *handlers) replaceSection(w http.ResponseWriter, r *http.Request) {
	var in section.CreateInput
	h.updateSection(w, r, &in, func() section.UpdateInput { return in.Replacement() })
}

func (h *handlers) patchSection(w http.ResponseWriter, r *http.Request) {
	var in section.UpdateInput
	h.updateSection(w, r, &in, func() section.UpdateInput { return in })
}

func (h *handlers) updateSection(w http.ResponseWriter, r *http.Request, dst any, build func() section.UpdateInput) {
	who, websiteID, sectionID, ok := h.sectionTarget(w, r)
	if !ok {
		return
	}
	if err := respond.Decode(w, r, dst); err != nil {
		respond.Error(w, r, err)
		return
	}
	sec, err := h.env.Sections.Update(r.Context(), who, websiteID, sectionID, build())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, sec)
}

func (h *handlers) deleteSection(w http.ResponseWriter, r *http.Request) {
	who, websiteID, sectionID, ok := h.sectionTarget(w, r)
	if !ok {
		return
	}
	if err := h.env.Sections.Delete(r.Context(), who, websiteID, sectionID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

/*──────────────────────────── Path helpers ─────────────────────────────────*/

// websiteTarget resolves the caller and {websiteID}.  On failure it has
// already written the response.
func (h *handlers) websiteTarget(w http.ResponseWriter, r *http.Request) (*identity.Identity, uint64, bool) {
	who, err := auth.Require(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return nil, 0, false
	}
	id, err := pathID(r, "websiteID")
	if err != nil {
		respond.Error(w, r, err)
		return nil, 0, false
	}
	return who, id, true
}

func (h *handlers) sectionTarget(w http.ResponseWriter, r *http.Request) (*identity.Identity, uint64, uint64, bool) {
	who, websiteID, ok := h.websiteTarget(w, r)
	if !ok {
		return nil, 0, 0, false
	}
	sectionID, err := pathID(r, "sectionID")
	if err != nil {
		respond.Error(w, r, err)
		return nil, 0, 0, false
	}
	return who, websiteID, sectionID, true
}

func pathID(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s %q: %w", name, raw, apperr.ErrNotFound)
	}
	return id, nil
}
