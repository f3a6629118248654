package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlcli/internal/dataprocessing"
)

func TestWriteCSV(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter()

	t.Run("writes headers and records", func(t *testing.T) {
		path := filepath.Join(tmpDir, "basic.csv")
		err := writer.WriteCSV(path, WriteOptions{
			Headers: []string{"a", "b"},
			Records: [][]string{{"1", "2"}, {"3", "4"}},
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
	})

	t.Run("prepends BOM when requested", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bom.csv")
		err := writer.WriteCSV(path, WriteOptions{
			Headers:   []string{"column"},
			Records:   [][]string{{"قيمة"}},
			BOMPrefix: true,
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\ufeff"))
		assert.Contains(t, string(data), "قيمة")
	})

	t.Run("creates missing directories", func(t *testing.T) {
		path := filepath.Join(tmpDir, "nested", "deep", "out.csv")
		err := writer.WriteCSV(path, WriteOptions{Headers: []string{"x"}})
		require.NoError(t, err)
		assert.FileExists(t, path)
	})
}

func TestWriteMissingnessReport(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter()

	report := []dataprocessing.MissingnessRow{
		{Column: "amount", NMissing: 3, PMissing: 0.3},
		{Column: "created_at", NMissing: 1, PMissing: 0.1},
		{Column: "order_id", NMissing: 0, PMissing: 0},
	}

	path := filepath.Join(tmpDir, "order_missingness.csv")
	require.NoError(t, writer.WriteMissingnessReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(data), "\ufeff")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "column,n_missing,p_missing", lines[0])
	assert.Equal(t, "amount,3,0.3", lines[1])
	assert.Equal(t, "order_id,0,0", lines[3])
}

func TestWriteRevenueReport(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter()

	report := []dataprocessing.RevenueRow{
		{Country: "SA", TotalRevenue: 1250.5, OrderCount: 7},
		{Country: "AE", TotalRevenue: 300, OrderCount: 2},
	}

	path := filepath.Join(tmpDir, "revenue_by_country.csv")
	require.NoError(t, writer.WriteRevenueReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(data), "\ufeff")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "country,total_revenue,order_count", lines[0])
	assert.Equal(t, "SA,1250.5,7", lines[1])
	assert.Equal(t, "AE,300,2", lines[2])
}
