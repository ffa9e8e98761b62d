// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – cap request body reads (config, 10 s default)
//   • WriteTimeout      – cap total response time (config, 15 s default)
//   • IdleTimeout       – close keep-alives on idle clients (config, 60 s)
//
// This helper centralises those settings so cmd/sitedesk doesn’t repeat
// boilerplate.  Zero values in cfg fall back to the defaults above.

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/config"
)

const (
	readHeaderTimeout   = 5 * time.Second
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// New constructs an *http.Server for cfg.ListenAddr.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       orDefault(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout:      orDefault(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:       orDefault(cfg.IdleTimeout, defaultIdleTimeout),
		ErrorLog:          zap.NewStdLog(zap.L().Named("http")),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
