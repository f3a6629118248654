package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "etlcli/internal/errors"
	"etlcli/pkg/contracts/domain"
)

func testOrders() []domain.Order {
	return []domain.Order{
		{OrderID: "o1", UserID: "u1", Amount: domain.NewFloat(10), CreatedAt: domain.NewTime(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))},
		{OrderID: "o2", UserID: "u1", Amount: domain.NewFloat(20)},
		{OrderID: "o3", UserID: "u9", Amount: domain.NewFloat(30), CreatedAt: domain.NewTime(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))},
	}
}

func testUsers() []domain.User {
	return []domain.User{
		{UserID: "u1", Country: domain.NewString("IQ"), SignupDate: domain.NewTime(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))},
		{UserID: "u2", Country: domain.NewString("AE")},
	}
}

func TestSafeLeftJoin(t *testing.T) {
	rows, stats, err := SafeLeftJoin(testOrders(), testUsers())
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 1, stats.MissingCreatedAt)
	assert.InDelta(t, 2.0/3.0, stats.CountryMatchRate, 1e-9)

	// matched rows carry user columns and signup parts
	assert.True(t, rows[0].Matched)
	assert.Equal(t, "IQ", rows[0].Country.Value)
	assert.Equal(t, int64(2023), rows[0].SignupParts.Year.Value)

	// unmatched rows keep null user columns
	assert.False(t, rows[2].Matched)
	assert.False(t, rows[2].Country.Valid)
	assert.False(t, rows[2].SignupDate.Valid)

	// created_at time parts derived during join
	assert.Equal(t, "2024-03-04", rows[0].Created.Date.Value)
	assert.Equal(t, "Monday", rows[0].Created.DOW.Value)
	assert.Equal(t, int64(15), rows[0].Created.Hour.Value)
	assert.Equal(t, "2024-03", rows[0].Created.Month.Value)
	assert.False(t, rows[1].Created.Date.Valid)
}

func TestSafeLeftJoin_DuplicateRightKey(t *testing.T) {
	users := append(testUsers(), domain.User{UserID: "u1"})

	_, _, err := SafeLeftJoin(testOrders(), users)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeJoin))
}

func TestSafeLeftJoin_EmptyLeft(t *testing.T) {
	rows, stats, err := SafeLeftJoin(nil, testUsers())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0.0, stats.CountryMatchRate)
}

func TestFlagAmountOutliers(t *testing.T) {
	rows := make([]domain.AnalyticsRow, 0, 8)
	for i := 0; i < 7; i++ {
		rows = append(rows, domain.AnalyticsRow{Order: domain.Order{Amount: domain.NewFloat(10)}})
	}
	rows = append(rows, domain.AnalyticsRow{Order: domain.Order{Amount: domain.NewFloat(9999)}})

	flagged := FlagAmountOutliers(rows, 1.5)

	assert.False(t, flagged[0].AmountOutlier)
	assert.True(t, flagged[7].AmountOutlier)
}

func TestWinsorizeAmounts(t *testing.T) {
	rows := []domain.AnalyticsRow{
		{Order: domain.Order{Amount: domain.NewFloat(1)}},
		{Order: domain.Order{Amount: domain.NewFloat(50)}},
		{Order: domain.Order{Amount: domain.Float{}}},
		{Order: domain.Order{Amount: domain.NewFloat(100)}},
	}

	winsored := WinsorizeAmounts(rows, 0.25, 0.75)

	assert.True(t, winsored[0].AmountWinsor.Valid)
	assert.GreaterOrEqual(t, winsored[0].AmountWinsor.Value, 1.0)
	assert.False(t, winsored[2].AmountWinsor.Valid)
	// original amounts untouched
	assert.Equal(t, 1.0, winsored[0].Amount.Value)
}
