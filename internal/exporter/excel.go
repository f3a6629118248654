package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"etlcli/internal/dataprocessing"
	"etlcli/internal/errors"
)

const revenueSheetName = "Revenue by Country"

// WriteRevenueWorkbook writes the revenue-by-country report as an Excel
// workbook with a header row and one row per country.
func WriteRevenueWorkbook(filePath string, report []dataprocessing.RevenueRow) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), revenueSheetName)

	headers := []string{"country", "total_revenue", "order_count"}
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.NewStorageError("failed to resolve column name", err)
		}
		if err := f.SetCellValue(revenueSheetName, col+"1", h); err != nil {
			return errors.NewStorageError("failed to write header cell", err)
		}
	}

	for rowIdx, row := range report {
		cells := []interface{}{row.Country, row.TotalRevenue, row.OrderCount}
		for colIdx, val := range cells {
			col, err := excelize.ColumnNumberToName(colIdx + 1)
			if err != nil {
				return errors.NewStorageError("failed to resolve column name", err)
			}
			cell := fmt.Sprintf("%s%d", col, rowIdx+2)
			if err := f.SetCellValue(revenueSheetName, cell, val); err != nil {
				return errors.NewStorageError("failed to write cell", err)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return errors.NewStorageError("failed to save workbook", err)
	}

	slog.Info("Wrote Excel workbook",
		slog.String("file_path", filePath),
		slog.Int("rows", len(report)))
	return nil
}
