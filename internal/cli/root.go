package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"pms/internal/platform/config"
	"pms/internal/platform/db"
	"pms/internal/platform/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool

	// loadConfig is replaced in tests.
	loadConfig func() config.Config
}

// NewRootCommand creates the root command for the pms binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{loadConfig: config.Load}

	cmd := &cobra.Command{
		Use:           "pms",
		Short:         "PMS - performance management service",
		Long:          "Goals, tasks and feedback for managers and employees, served over a JSON API.",
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug-level text logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))

	return cmd
}

// setup loads and validates configuration and installs the logger.
func (o *RootOptions) setup() (config.Config, error) {
	cfg := o.loadConfig()
	logger.Init(o.Verbose || !cfg.IsProduction(), cfg.SentryDSN)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func withPool(ctx context.Context, cfg config.Config, fn func(*pgxpool.Pool) error) error {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}
