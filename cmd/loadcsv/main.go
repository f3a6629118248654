// Command loadcsv reads the raw orders and users CSVs, enforces the column
// types and writes the typed tables to Parquet with a run metadata file.
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

	logger.Info("Starting CSV load",
		slog.String("run_id", runID),
		slog.String("orders", paths.OrdersCSV),
		slog.String("users", paths.UsersCSV))

	start := time.Now().UTC()
	state := etl.NewState(cfg, paths, runID)
	manager := etl.NewManager(providers.Tracer, logger,
		etl.NewLoadRawStage(),
		etl.NewWriteRawStage(),
		etl.NewWriteMetadataStage(start),
	)

	if err := manager.Run(ctx, state); err != nil {
		logger.Error("CSV load failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("CSV load finished",
		slog.String("run_id", runID),
		slog.Int("orders", len(state.Orders)),
		slog.Int("users", len(state.Users)))
}
