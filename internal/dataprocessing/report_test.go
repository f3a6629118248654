package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlcli/pkg/contracts/domain"
)

func TestMissingnessReport(t *testing.T) {
	orders := []domain.Order{
		{OrderID: "o1", UserID: "u1", Amount: domain.NewFloat(1), Quantity: domain.NewInt(1), Status: "paid", CreatedAt: domain.Time{}},
		{OrderID: "o2", UserID: "u2", Amount: domain.Float{}, Quantity: domain.NewInt(2), Status: "paid", CreatedAt: domain.Time{}},
		{OrderID: "o3", UserID: "u3", Amount: domain.Float{}, Quantity: domain.NewInt(3), Status: "refund", CreatedAt: domain.NewTime(testUsers()[0].SignupDate.Value)},
	}

	report := MissingnessReport(orders)

	require.Len(t, report, len(domain.OrderColumns))

	// most-missing columns first; ties keep column order
	assert.Equal(t, "amount", report[0].Column)
	assert.Equal(t, 2, report[0].NMissing)
	assert.InDelta(t, 2.0/3.0, report[0].PMissing, 1e-9)

	assert.Equal(t, "created_at", report[1].Column)
	assert.InDelta(t, 2.0/3.0, report[1].PMissing, 1e-9)

	// fully-populated columns report zero
	byCol := map[string]MissingnessRow{}
	for _, r := range report {
		byCol[r.Column] = r
	}
	assert.Equal(t, 0, byCol["order_id"].NMissing)
	assert.Equal(t, 0, byCol["status"].NMissing)
}

func TestMissingnessReport_Empty(t *testing.T) {
	report := MissingnessReport(nil)

	require.Len(t, report, len(domain.OrderColumns))
	for _, r := range report {
		assert.Equal(t, 0, r.NMissing)
		assert.Equal(t, 0.0, r.PMissing)
	}
}

func TestRevenueByCountry(t *testing.T) {
	rows := []domain.AnalyticsRow{
		{Order: domain.Order{OrderID: "o1", Amount: domain.NewFloat(100)}, Country: domain.NewString("IQ")},
		{Order: domain.Order{OrderID: "o2", Amount: domain.NewFloat(50)}, Country: domain.NewString("IQ")},
		{Order: domain.Order{OrderID: "o3", Amount: domain.NewFloat(80)}, Country: domain.NewString("AE")},
		{Order: domain.Order{OrderID: "o4", Amount: domain.Float{}}, Country: domain.NewString("AE")},
		{Order: domain.Order{OrderID: "o5", Amount: domain.NewFloat(10)}},
	}

	report := RevenueByCountry(rows)

	require.Len(t, report, 3)

	assert.Equal(t, "IQ", report[0].Country)
	assert.Equal(t, 150.0, report[0].TotalRevenue)
	assert.Equal(t, 2, report[0].OrderCount)

	assert.Equal(t, "AE", report[1].Country)
	assert.Equal(t, 80.0, report[1].TotalRevenue)
	assert.Equal(t, 2, report[1].OrderCount)

	// unmatched orders keep their own bucket
	assert.Equal(t, "", report[2].Country)
	assert.Equal(t, 10.0, report[2].TotalRevenue)
	assert.Equal(t, 1, report[2].OrderCount)
}

func TestMissingnessReport_SortedDescending(t *testing.T) {
	orders := []domain.Order{
		{OrderID: "o1", UserID: "", Amount: domain.Float{}, Quantity: domain.Int{}, Status: ""},
	}

	report := MissingnessReport(orders)

	for i := 1; i < len(report); i++ {
		assert.GreaterOrEqual(t, report[i-1].PMissing, report[i].PMissing)
	}
}
