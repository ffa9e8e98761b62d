// cmd/sitedesk/user.go
//
// `sitedesk user create` – bootstrap identities without the HTTP API.
// This is the only way to create the first agency admin.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/sitedesk/internal/database"
	"github.com/yanizio/sitedesk/internal/identity"
)

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage identities",
	}
	user.AddCommand(newUserCreateCmd())
	return user
}

func newUserCreateCmd() *cobra.Command {
	var (
		in          identity.SignupInput
		agencyAdmin bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			ids := identity.NewService(db, identity.NewHasher(cfg.Auth.BcryptCost))
			created, err := ids.Create(ctx, in, agencyAdmin)
			if err != nil {
				return err
			}
			log.Infow("identity created",
				"id", created.ID, "username", created.Username, "agency_admin", created.IsAgencyAdmin)
			fmt.Fprintf(cmd.OutOrStdout(), "created identity %d (%s)\n", created.ID, created.Username)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "login name (required)")
	f.StringVar(&in.Email, "email", "", "email address (required)")
	f.StringVar(&in.Password, "password", "", "password, at least 8 characters (required)")
	f.StringVar(&in.FirstName, "first-name", "", "given name")
	f.StringVar(&in.LastName, "last-name", "", "family name")
	f.StringVar(&in.Company, "company", "", "company name")
	f.BoolVar(&agencyAdmin, "agency-admin", false, "grant the agency-admin capability")
	for _, name := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
