// Package cmd defines the CLI commands for the casesearch executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencourts/casesearch/internal/config"
	"github.com/opencourts/casesearch/internal/logging"
	"github.com/opencourts/casesearch/internal/metrics"
)

var cfgFile string

// appKeyType is the key for storing the app context in the command context.
type appKeyType string

const appKey appKeyType = "app"

// app holds the services shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "casesearch",
		Short: "Harvests court case records from the judiciary search portal.",
		Long: `casesearch replays the full search space against the judiciary
case search portal, persists raw case documents, and transforms them into a
normalized relational dataset.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, uuid.NewString())
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			metrics.Init()
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, &app{
				cfg:    cfg,
				logger: logger,
			}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// resolveApp retrieves the app from the command context.
func resolveApp(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return a, nil
}

// Execute runs the CLI with signal-aware cancellation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
