package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"etlcli/internal/dataprocessing"
)

func TestWriteRevenueWorkbook(t *testing.T) {
	tmpDir := t.TempDir()

	report := []dataprocessing.RevenueRow{
		{Country: "SA", TotalRevenue: 1000.25, OrderCount: 4},
		{Country: "KW", TotalRevenue: 75, OrderCount: 1},
	}

	path := filepath.Join(tmpDir, "revenue_by_country.xlsx")
	require.NoError(t, WriteRevenueWorkbook(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(revenueSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"country", "total_revenue", "order_count"}, rows[0])
	assert.Equal(t, "SA", rows[1][0])
	assert.Equal(t, "1000.25", rows[1][1])
	assert.Equal(t, "KW", rows[2][0])
}

func TestWriteBarChart(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "figures", "price_by_location.html")
	err := WriteBarChart(path, "Average Price by Area", "avg_price",
		[]string{"north", "central"}, []float64{450000, 820000})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.Contains(html, "Average Price by Area"))
	assert.True(t, strings.Contains(html, "north"))
	assert.True(t, strings.Contains(html, "central"))
}
