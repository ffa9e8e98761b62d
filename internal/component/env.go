// internal/component/env.go
//
// Shared dependencies handed to every component.
//
// Context
// -------
// Env is built once at start-up from the database pool and the loaded
// configuration.  Services are constructed here so each component gets
// the same instances and the same activity log.

package component

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/activity"
	"github.com/yanizio/sitedesk/internal/analytics"
	"github.com/yanizio/sitedesk/internal/auth"
	"github.com/yanizio/sitedesk/internal/config"
	"github.com/yanizio/sitedesk/internal/identity"
	"github.com/yanizio/sitedesk/internal/requestinfo"
	"github.com/yanizio/sitedesk/internal/section"
	"github.com/yanizio/sitedesk/internal/website"
)

// Env bundles services, auth helpers, and infrastructure.
type Env struct {
	DB     *sqlx.DB
	Config *config.Config
	Log    *zap.Logger

	Identities    *identity.Service
	Tokens        *auth.Tokens
	Revocations   *auth.Revocations
	Authenticator *auth.Authenticator

	Activity  *activity.Log
	Websites  *website.Service
	Sections  *section.Service
	Analytics *analytics.Service
	Tracker   *analytics.Tracker

	// GeoIP may be nil when no GeoLite2 database is configured.
	GeoIP requestinfo.CountryLookup
}

// NewEnv wires every service over db.  A nil log falls back to zap.L().
func NewEnv(db *sqlx.DB, cfg *config.Config, log *zap.Logger, geo requestinfo.CountryLookup) *Env {
	if log == nil {
		log = zap.L()
	}

	ids := identity.NewService(db, identity.NewHasher(cfg.Auth.BcryptCost))
	tokens := auth.NewTokens(cfg.Auth)
	revoked := auth.NewRevocations(db)
	actLog := activity.NewLog(db)
	sites := website.NewService(db, actLog)

	return &Env{
		DB:            db,
		Config:        cfg,
		Log:           log,
		Identities:    ids,
		Tokens:        tokens,
		Revocations:   revoked,
		Authenticator: auth.NewAuthenticator(tokens, revoked, ids),
		Activity:      actLog,
		Websites:      sites,
		Sections:      section.NewService(db, actLog),
		Analytics:     analytics.NewService(sites, actLog, nil),
		Tracker:       analytics.NewTracker(db, sites),
		GeoIP:         geo,
	}
}
