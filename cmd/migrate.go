package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opencourts/casesearch/internal/store"
)

// newMigrateCmd creates the 'migrate' subcommand: apply the raw store and
// canonical schema DDL.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies the database schema",

		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := resolveApp(ctx)
			if err != nil {
				return err
			}
			pool, err := store.Connect(ctx, a.cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.Migrate(ctx, pool); err != nil {
				return err
			}
			a.logger.Info("Schema applied")
			return nil
		},
	}
}
