package exporter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlcli/pkg/contracts/domain"
)

func TestParquetOrdersRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewParquetWriter()

	created := domain.NewTime(time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC))
	orders := []domain.Order{
		{
			OrderID:   "o1",
			UserID:    "u1",
			Amount:    domain.NewFloat(99.5),
			Quantity:  domain.NewInt(2),
			Status:    "Paid",
			CreatedAt: created,
		},
		{
			OrderID: "o2",
			UserID:  "u2",
			Status:  "refund",
			// amount, quantity and created_at stay null
		},
	}

	path := filepath.Join(tmpDir, "orders.parquet")
	require.NoError(t, w.WriteOrders(path, orders))

	got, err := ReadOrders(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "o1", got[0].OrderID)
	assert.True(t, got[0].Amount.Valid)
	assert.Equal(t, 99.5, got[0].Amount.Value)
	assert.True(t, got[0].CreatedAt.Valid)
	assert.Equal(t, created.Value, got[0].CreatedAt.Value)

	assert.Equal(t, "o2", got[1].OrderID)
	assert.False(t, got[1].Amount.Valid)
	assert.False(t, got[1].Quantity.Valid)
	assert.False(t, got[1].CreatedAt.Valid)
}

func TestParquetOrdersCleanRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewParquetWriter()

	orders := []domain.Order{
		{
			OrderID:         "o1",
			UserID:          "u1",
			Amount:          domain.NewFloat(10),
			Quantity:        domain.NewInt(1),
			Status:          "Refunded",
			StatusClean:     "refund",
			AmountMissing:   false,
			QuantityMissing: false,
		},
		{
			OrderID:         "o2",
			UserID:          "u1",
			Status:          "paid",
			StatusClean:     "paid",
			AmountMissing:   true,
			QuantityMissing: true,
		},
	}

	path := filepath.Join(tmpDir, "orders_clean.parquet")
	require.NoError(t, w.WriteOrdersClean(path, orders))

	got, err := ReadOrders(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "refund", got[0].StatusClean)
	assert.False(t, got[0].AmountMissing)
	assert.Equal(t, "paid", got[1].StatusClean)
	assert.True(t, got[1].AmountMissing)
	assert.True(t, got[1].QuantityMissing)
}

func TestParquetUsersRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewParquetWriter()

	signup := domain.NewTime(time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC))
	users := []domain.User{
		{UserID: "u1", Country: domain.NewString("SA"), SignupDate: signup},
		{UserID: "u2"},
	}

	path := filepath.Join(tmpDir, "users.parquet")
	require.NoError(t, w.WriteUsers(path, users))

	got, err := ReadUsers(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SA", got[0].Country.Value)
	assert.Equal(t, signup.Value, got[0].SignupDate.Value)
	assert.False(t, got[1].Country.Valid)
	assert.False(t, got[1].SignupDate.Valid)
}

func TestWriteAnalytics(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewParquetWriter()

	created := domain.NewTime(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	rows := []domain.AnalyticsRow{
		{
			Order: domain.Order{
				OrderID:     "o1",
				UserID:      "u1",
				Amount:      domain.NewFloat(50),
				Quantity:    domain.NewInt(1),
				Status:      "paid",
				StatusClean: "paid",
				CreatedAt:   created,
			},
			Created:      domain.NewTimeParts(created),
			Country:      domain.NewString("SA"),
			Matched:      true,
			AmountWinsor: domain.NewFloat(50),
		},
		{
			Order: domain.Order{OrderID: "o2", UserID: "missing", Status: "paid", StatusClean: "paid"},
			// unmatched row keeps all user-side columns null
		},
	}

	path := filepath.Join(tmpDir, "analytics_table.parquet")
	require.NoError(t, w.WriteAnalytics(path, rows))
	assert.FileExists(t, path)

	// The order columns survive a read back through the shared reader.
	got, err := ReadOrders(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].OrderID)
	assert.Equal(t, "paid", got[0].StatusClean)
}

func TestSchemaColumnNames(t *testing.T) {
	// Flag columns keep the pandas-style dunder names the downstream
	// consumers expect.
	clean := OrdersCleanSchema()
	analytics := AnalyticsSchema()
	for _, name := range []string{"amount__isna", "quantity__isna"} {
		assert.True(t, clean.HasField(name), "orders_clean missing %s", name)
		assert.True(t, analytics.HasField(name), "analytics missing %s", name)
	}
	assert.True(t, analytics.HasField("amount__is_outlier"))
	assert.False(t, clean.HasField("amount_missing"))
}

func TestReadOrdersMissingFile(t *testing.T) {
	_, err := ReadOrders(context.Background(), filepath.Join(t.TempDir(), "absent.parquet"))
	assert.Error(t, err)
}
