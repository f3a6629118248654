package exporter

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"etlcli/internal/errors"
)

// WriteBarChart renders a standalone HTML bar chart with one value per label.
func WriteBarChart(filePath, title, seriesName string, labels []string, values []float64) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.BarData{Value: v})
	}
	bar.SetXAxis(labels).AddSeries(seriesName, items)

	f, err := os.Create(filePath)
	if err != nil {
		return errors.NewStorageError("failed to create chart file", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return errors.NewStorageError("failed to render chart", err)
	}

	slog.Info("Wrote chart",
		slog.String("file_path", filePath),
		slog.Int("series_points", len(values)))
	return nil
}
