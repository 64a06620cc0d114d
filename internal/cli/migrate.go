package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"pms/internal/platform/db"
)

// NewMigrateCommand creates the migrate command and its up, down and
// status subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(newMigrateStep(rootOpts, "up", "Apply all pending migrations", db.Migrate))
	cmd.AddCommand(newMigrateStep(rootOpts, "down", "Roll back the most recent migration", db.MigrateDown))
	cmd.AddCommand(newMigrateStep(rootOpts, "status", "Print applied and pending migrations", db.MigrationStatus))

	return cmd
}

func newMigrateStep(rootOpts *RootOptions, use, short string, step func(ctx context.Context, pool *pgxpool.Pool) error) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.setup()
			if err != nil {
				return err
			}
			return withPool(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				if err := step(cmd.Context(), pool); err != nil {
					return fmt.Errorf("migrate %s: %w", use, err)
				}
				return nil
			})
		},
	}
}
