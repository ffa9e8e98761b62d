// cmd/sitedesk/serve.go
//
// `sitedesk serve` – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load config and start the rotating logger.
//
//  2. Open the MySQL pool (pinged with retries).
//
//  3. Open the optional GeoLite2 reader for visit country lookup.
//
//  4. Build the component Env and the chi router:
//
//     • RequestID → Recover → RequestLog → Security → ForceHTTPS
//     • /healthz                 – pool ping
//     • /metrics                 – Prometheus
//     • /api/*                   – every registered component
//
//  5. Run the server and a signal watcher in an errgroup.  SIGINT or
//     SIGTERM triggers a graceful shutdown with a 10 s deadline.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/sitedesk/internal/component"
	"github.com/yanizio/sitedesk/internal/config"
	"github.com/yanizio/sitedesk/internal/database"
	"github.com/yanizio/sitedesk/internal/middleware"
	"github.com/yanizio/sitedesk/internal/requestinfo"
	"github.com/yanizio/sitedesk/internal/respond"
	"github.com/yanizio/sitedesk/internal/server"

	_ "github.com/yanizio/sitedesk/components/accounts"
	_ "github.com/yanizio/sitedesk/components/analytics"
	_ "github.com/yanizio/sitedesk/components/websites"
)

const shutdownGrace = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	//
	// ── 1.  Database pool ───────────────────────────────────────────────
	//
	log.Infow("connecting to database", "host", cfg.Database.Host, "name", cfg.Database.Name)
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database online")

	//
	// ── 2.  GeoLite2 (optional) ─────────────────────────────────────────
	//
	geo, err := requestinfo.OpenGeoIP(cfg.Analytics.GeoIPPath)
	if err != nil {
		return err
	}
	defer geo.Close()
	var lookup requestinfo.CountryLookup
	if geo != nil {
		lookup = geo
	} else {
		log.Info("geoip disabled; visits are stored without country")
	}

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	env := component.NewEnv(db, cfg, log.Desugar(), lookup)
	srv := server.New(cfg.HTTP, newRouter(cfg, env))

	//
	// ── 4.  Run until signalled ─────────────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newRouter assembles the middleware chain and mounts every component.
func newRouter(cfg *config.Config, env *component.Env) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recover(env.Log),
		middleware.RequestLog(env.Log),
		middleware.Security,
		middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS),
	)

	r.Get("/healthz", healthz(env.DB, env.Log))
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(api chi.Router) {
		component.Mount(api, env)
	})
	return r
}

func healthz(db *sqlx.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
