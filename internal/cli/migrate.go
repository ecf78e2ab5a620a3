package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicvoice/complaint-service/internal/persistence"
)

// MigrateCmd applies pending SQL migrations.
func MigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if dir == "" {
				dir = e.cfg.Postgres.MigrationsDir
			}
			applied, err := persistence.RunMigrations(cmd.Context(), e.pg.PoolHandle(), dir, e.logger)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			if applied == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", color.New(color.FgBlue).Sprint("OK"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s applied %d migration(s) from %s\n",
				color.New(color.FgGreen).Sprint("OK"), applied, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	return cmd
}
