package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"etlcli/internal/dataprocessing"
)

// CSVWriter provides CSV report export
type CSVWriter struct{}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteMissingnessReport writes the per-column missingness report.
func (w *CSVWriter) WriteMissingnessReport(filePath string, report []dataprocessing.MissingnessRow) error {
	records := make([][]string, 0, len(report))
	for _, row := range report {
		records = append(records, []string{
			row.Column,
			strconv.Itoa(row.NMissing),
			strconv.FormatFloat(row.PMissing, 'f', -1, 64),
		})
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"column", "n_missing", "p_missing"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteRevenueReport writes the revenue-by-country report.
func (w *CSVWriter) WriteRevenueReport(filePath string, report []dataprocessing.RevenueRow) error {
	records := make([][]string, 0, len(report))
	for _, row := range report {
		records = append(records, []string{
			row.Country,
			strconv.FormatFloat(row.TotalRevenue, 'f', -1, 64),
			strconv.Itoa(row.OrderCount),
		})
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"country", "total_revenue", "order_count"},
		Records:   records,
		BOMPrefix: true,
	})
}
