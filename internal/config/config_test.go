package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ETL_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 0.01, cfg.ETL.WinsorLo)
	assert.Equal(t, 0.99, cfg.ETL.WinsorHi)
	assert.Equal(t, 1.5, cfg.ETL.OutlierK)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Contains(t, cfg.Geodata.OverpassURL, "overpass-api.de")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ETL_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ETL_LOGGING_LEVEL", "debug")
	t.Setenv("ETL_ETL_OUTLIER_K", "3.0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3.0, cfg.ETL.OutlierK)
}

func TestLoad_FileMerge(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "etl.yaml")
	content := []byte("paths:\n  root_dir: /tmp/etl-data\netl:\n  winsor_lo: 0.05\n  winsor_hi: 0.95\n")
	require.NoError(t, os.WriteFile(file, content, 0644))
	t.Setenv("ETL_CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/etl-data", cfg.Paths.RootDir)
	assert.Equal(t, 0.05, cfg.ETL.WinsorLo)
	assert.Equal(t, 0.95, cfg.ETL.WinsorHi)
}

func TestLoad_FileLoggingApplied(t *testing.T) {
	file := filepath.Join(t.TempDir(), "etl.yaml")
	content := []byte("logging:\n  level: debug\n  format: text\n  output: file\n  file_path: logs/run.log\n")
	require.NoError(t, os.WriteFile(file, content, 0644))
	t.Setenv("ETL_CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "logs/run.log", cfg.Logging.FilePath)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "etl.yaml")
	content := []byte("logging:\n  level: debug\netl:\n  outlier_k: 2.0\ngeodata:\n  overpass_url: http://file.test/api\n")
	require.NoError(t, os.WriteFile(file, content, 0644))
	t.Setenv("ETL_CONFIG_FILE", file)
	t.Setenv("ETL_LOGGING_LEVEL", "warn")
	t.Setenv("ETL_ETL_OUTLIER_K", "5.0")
	t.Setenv("ETL_GEODATA_OVERPASS_URL", "http://env.test/api")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5.0, cfg.ETL.OutlierK)
	assert.Equal(t, "http://env.test/api", cfg.Geodata.OverpassURL)
}

func TestLoad_FileZeroValueApplied(t *testing.T) {
	file := filepath.Join(t.TempDir(), "etl.yaml")
	content := []byte("etl:\n  winsor_lo: 0\ntracing:\n  enabled: true\n")
	require.NoError(t, os.WriteFile(file, content, 0644))
	t.Setenv("ETL_CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.ETL.WinsorLo)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoad_InvalidBounds(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "etl.yaml")
	require.NoError(t, os.WriteFile(file, []byte("etl:\n  winsor_lo: 0.9\n  winsor_hi: 0.1\n"), 0644))
	t.Setenv("ETL_CONFIG_FILE", file)

	_, err := Load()
	assert.Error(t, err)
}

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths("/srv/etl")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/srv/etl", "data", "raw"), paths.RawDir)
	assert.Equal(t, filepath.Join(paths.RawDir, "orders.csv"), paths.OrdersCSV)
	assert.Equal(t, filepath.Join(paths.ProcessedDir, "analytics_table.parquet"), paths.AnalyticsParquet)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "revenue_by_country.csv"), paths.RevenueCSV)
	assert.Equal(t, filepath.Join(paths.FiguresDir, "price_by_location.html"), paths.PriceByLocationHTML)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	root := t.TempDir()
	paths, err := GetPaths(root)
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.RawDir, paths.ProcessedDir, paths.CacheDir, paths.ReportsDir, paths.FiguresDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
