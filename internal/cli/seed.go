package cli

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"pms/internal/app/server"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load users and goals from a YAML fixture",
		Long:         "Creates the users and goals named in the fixture. Existing users and goals with the same title are skipped, so the command can be re-run.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.setup()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.SeedFile
			}
			return withPool(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				services, err := server.NewServices(cfg, pool)
				if err != nil {
					return err
				}
				res, err := server.SeedFile(cmd.Context(), file, services.Auth, services.Performance)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "users: %d created, %d skipped\ngoals: %d created, %d skipped\n",
					res.UsersCreated, res.UsersSkipped, res.GoalsCreated, res.GoalsSkipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture path (defaults to SEED_FILE)")
	return cmd
}
