// cmd/sitedesk/migrate.go
//
// `sitedesk migrate up|down` – schema migrations from the embedded
// internal/database/migrations set.
package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yanizio/sitedesk/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply (up) or roll back (down) database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			err = database.Migrate(cmd.Context(), cfg.Database, args[0])
			if errors.Is(err, database.ErrNoChange) {
				log.Infow("schema already current", "direction", args[0])
				return nil
			}
			return err
		},
	}
}
