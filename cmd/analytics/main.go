// Command analytics reads the cleaned Parquet tables, joins orders to users
// under many-to-one validation and writes the analysis table plus the
// revenue reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"etlcli/internal/config"
	"etlcli/internal/etl"
	"etlcli/internal/infrastructure"
	"etlcli/pkg/contracts"
)

func main() {
	rootDir := flag.String("root", "", "data root directory (defaults to config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *rootDir != "" {
		cfg.Paths.RootDir = *rootDir
	}

	paths, err := config.GetPaths(cfg.Paths.RootDir)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeTracing(cfg.Tracing.Enabled, contracts.Version, logger)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, runID := infrastructure.ContextWithRunID(context.Background())
	defer providers.Shutdown(ctx)

	logger.Info("Starting analysis table build",
		slog.String("run_id", runID),
		slog.String("orders", paths.OrdersCleanParquet),
		slog.String("users", paths.UsersParquet))

	state := etl.NewState(cfg, paths, runID)
	manager := etl.NewManager(providers.Tracer, logger,
		etl.NewLoadProcessedStage(),
		etl.NewQualityStage(),
		etl.NewAnalyticsStage(),
		etl.NewWriteAnalyticsStage(),
	)

	if err := manager.Run(ctx, state); err != nil {
		logger.Error("Analysis table build failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Analysis table build finished",
		slog.String("run_id", runID),
		slog.Int("rows", state.Stats.Rows),
		slog.Float64("country_match_rate", state.Stats.CountryMatchRate))
}
