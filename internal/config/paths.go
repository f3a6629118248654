package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the pipeline.
type Paths struct {
	RootDir      string
	DataDir      string
	RawDir       string
	ProcessedDir string
	CacheDir     string
	ExternalDir  string
	ReportsDir   string
	FiguresDir   string
	LogsDir      string

	// Well-known input files
	OrdersCSV   string
	UsersCSV    string
	ListingsCSV string

	// Well-known output files
	OrdersParquet       string
	UsersParquet        string
	OrdersCleanParquet  string
	AnalyticsParquet    string
	MissingnessCSV      string
	RevenueCSV          string
	RevenueXLSX         string
	PriceByLocationHTML string
	RunMetaJSON         string
}

// GetPaths returns the application paths rooted at the given directory.
// Directory structure:
//
//	<root>/
//	  ├── data/
//	  │   ├── raw/         (input CSVs)
//	  │   ├── processed/   (Parquet outputs + run metadata)
//	  │   ├── cache/       (geodata memoization entries)
//	  │   ├── external/    (fetched reference data)
//	  │   ├── reports/     (CSV/Excel reports)
//	  │   └── figures/     (HTML charts)
//	  └── logs/
func GetPaths(root string) (*Paths, error) {
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}

	dataDir := filepath.Join(root, "data")
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "processed")
	reportsDir := filepath.Join(dataDir, "reports")
	figuresDir := filepath.Join(dataDir, "figures")

	paths := &Paths{
		RootDir:      root,
		DataDir:      dataDir,
		RawDir:       rawDir,
		ProcessedDir: processedDir,
		CacheDir:     filepath.Join(dataDir, "cache"),
		ExternalDir:  filepath.Join(dataDir, "external"),
		ReportsDir:   reportsDir,
		FiguresDir:   figuresDir,
		LogsDir:      filepath.Join(root, "logs"),

		OrdersCSV:   filepath.Join(rawDir, "orders.csv"),
		UsersCSV:    filepath.Join(rawDir, "users.csv"),
		ListingsCSV: filepath.Join(rawDir, "Aqar_data.csv"),

		OrdersParquet:       filepath.Join(processedDir, "orders.parquet"),
		UsersParquet:        filepath.Join(processedDir, "users.parquet"),
		OrdersCleanParquet:  filepath.Join(processedDir, "orders_clean.parquet"),
		AnalyticsParquet:    filepath.Join(processedDir, "analytics_table.parquet"),
		MissingnessCSV:      filepath.Join(reportsDir, "order_missingness.csv"),
		RevenueCSV:          filepath.Join(reportsDir, "revenue_by_country.csv"),
		RevenueXLSX:         filepath.Join(reportsDir, "revenue_by_country.xlsx"),
		PriceByLocationHTML: filepath.Join(figuresDir, "price_by_location.html"),
		RunMetaJSON:         filepath.Join(processedDir, "_run_meta.json"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.CacheDir,
		p.ExternalDir,
		p.ReportsDir,
		p.FiguresDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if logger != nil {
			logger.Debug("Ensured directory exists", slog.String("directory", dir))
		}
	}

	return nil
}

// GetReportPath resolves a file name inside the reports directory
func (p *Paths) GetReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// GetCachePath resolves a file name inside the cache directory
func (p *Paths) GetCachePath(name string) string {
	return filepath.Join(p.CacheDir, name)
}

// GetProcessedPath resolves a file name inside the processed directory
func (p *Paths) GetProcessedPath(name string) string {
	return filepath.Join(p.ProcessedDir, name)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
