// cmd/sitedesk/main.go
//
// Sitedesk – command-line entry point.
//
// Commands
// --------
//
//	sitedesk serve                     run the HTTP API
//	sitedesk migrate up|down           apply or roll back the schema
//	sitedesk user create …             create an identity from the shell
//
// Every command loads configuration the same way (conf/.env →
// conf/global.yaml → SITEDESK_* env → vault: references) and starts the
// rotating zap logger before doing anything else.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/config"
	"github.com/yanizio/sitedesk/internal/logger"
)

func main() {
	root := &cobra.Command{
		Use:           "sitedesk",
		Short:         "Multi-tenant website management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newUserCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sitedesk:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and installs the global logger.
func bootstrap(ctx context.Context) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log, logger.RunningInTTY())
	if err != nil {
		return nil, nil, fmt.Errorf("start logger: %w", err)
	}
	return cfg, log, nil
}
