// Command etl runs the full order pipeline in one process: load the raw
// CSVs, enforce quality gates, clean, build the analysis table and write
// every output plus the run metadata.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

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

	logger.Info("Starting ETL run",
		slog.String("run_id", runID),
		slog.String("root", paths.RootDir))

	start := time.Now().UTC()
	state := etl.NewState(cfg, paths, runID)
	manager := etl.NewManager(providers.Tracer, logger,
		etl.NewLoadRawStage(),
		etl.NewQualityStage(),
		etl.NewCleanStage(),
		etl.NewAnalyticsStage(),
		etl.NewWriteCleanStage(),
		etl.NewWriteAnalyticsStage(),
		etl.NewWriteMetadataStage(start),
	)

	if err := manager.Run(ctx, state); err != nil {
		logger.Error("ETL run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("ETL run finished",
		slog.String("run_id", runID),
		slog.Int("outputs", len(state.Outputs)))
}
