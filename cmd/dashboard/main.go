package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/config"
	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
	"github.com/David-Botos/gss-dashboard/pkg/server"
)

var (
	// Global flags
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd serves the dashboard when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "GSS gender wage gap dashboard",
	Long: `Loads the General Social Survey extract once, cleans it, builds the
summary table and charts, and serves them on a single page with an
interactive grouped bar chart.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = config.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the survey and serve the dashboard",
	RunE:  runServe,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load the survey and print the summary table and breadwinner counts",
	RunE:  runSummary,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd, summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := initialize(ctx)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(state, cfg, logger)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := initialize(ctx)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), state)
	return nil
}

// initialize runs the startup pipeline, logging the failure category
func initialize(ctx context.Context) (*pipeline.State, error) {
	logger.Info("Loading survey",
		zap.String("source", cfg.Source),
		zap.String("location", cfg.Location),
		zap.String("policy", cfg.ParsePolicy))

	state, err := pipeline.Initialize(ctx, cfg, logger)
	if err != nil {
		category := pipeline.Categorize(err)
		logger.Error("Dashboard failed to start",
			zap.String("category", category.String()),
			zap.Error(err))
		return nil, err
	}
	return state, nil
}
