// Command storefrontctl runs operator tasks against the storefront database
// with the same services the HTTP server uses.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"storefront-backend/internal/config"
	"storefront-backend/internal/database"
	"storefront-backend/internal/logger"
)

var (
	timeout time.Duration
	verbose bool
	noColor bool
)

// env is what every subcommand needs before it can touch the catalog.
type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

func (e *env) close() {
	e.pool.Close()
	e.log.Sync()
}

func setup() (*env, error) {
	cfg := config.Load()

	mode := cfg.Env
	if verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Operator commands for the storefront backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the command")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable development logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newRewriteCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		failure(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
