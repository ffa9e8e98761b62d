// internal/database/migrate.go
//
// Schema migrations via golang-migrate.
//
// Context
// -------
// SQL files under migrations/ are embedded into the binary and applied
// with the iofs source driver.  The runner opens its own short-lived pool
// with multiStatements enabled because each file holds several DDL
// statements; the application pool never enables that flag.
//
// Usage
// -----
//
//	sitedesk migrate up
//	sitedesk migrate down
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNoChange is returned when the schema is already at the target version.
var ErrNoChange = migrate.ErrNoChange

// Migrate applies migrations in direction ("up" or "down").
func Migrate(ctx context.Context, cfg config.Database, direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	opts := DefaultOptions
	opts.MaxOpenConns, opts.MaxIdleConns = 1, 1
	db, err := OpenWithOptions(ctx, DSN(cfg, true), opts)
	if err != nil {
		return err
	}
	defer db.Close()

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	drv, err := migratemysql.WithInstance(db.DB, &migratemysql.Config{DatabaseName: cfg.Name})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	v, dirty, _ := m.Version()
	zap.S().Infow("migrations applied",
		"direction", direction, "version", v, "dirty", dirty, "no_change", err != nil)
	return err
}
