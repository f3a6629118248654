package dataprocessing

import (
	"sort"

	"github.com/samber/lo"

	"etlcli/pkg/contracts/domain"
)

// MissingnessRow reports missing cells for one column.
type MissingnessRow struct {
	Column   string  `json:"column" csv:"column"`
	NMissing int     `json:"n_missing" csv:"n_missing"`
	PMissing float64 `json:"p_missing" csv:"p_missing"`
}

// MissingnessReport counts missing cells per order column, sorted by the
// missing share descending. Column order breaks ties, so the output is
// deterministic.
func MissingnessReport(orders []domain.Order) []MissingnessRow {
	n := len(orders)
	counts := map[string]int{}
	for _, o := range orders {
		if o.OrderID == "" {
			counts["order_id"]++
		}
		if o.UserID == "" {
			counts["user_id"]++
		}
		if !o.Amount.Valid {
			counts["amount"]++
		}
		if !o.Quantity.Valid {
			counts["quantity"]++
		}
		if o.Status == "" {
			counts["status"]++
		}
		if !o.CreatedAt.Valid {
			counts["created_at"]++
		}
	}

	rows := make([]MissingnessRow, 0, len(domain.OrderColumns))
	for _, col := range domain.OrderColumns {
		row := MissingnessRow{Column: col, NMissing: counts[col]}
		if n > 0 {
			row.PMissing = float64(counts[col]) / float64(n)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PMissing > rows[j].PMissing
	})

	return rows
}

// RevenueRow is one line of the revenue-by-country report. Country is empty
// for orders whose user had no country or no user match; that bucket is
// kept rather than dropped.
type RevenueRow struct {
	Country      string  `json:"country" csv:"country"`
	TotalRevenue float64 `json:"total_revenue" csv:"total_revenue"`
	OrderCount   int     `json:"order_count" csv:"order_count"`
}

// RevenueByCountry aggregates the joined rows per country: total revenue is
// the sum of non-null amounts, order count is the number of rows. Sorted by
// total revenue descending, country ascending on ties.
func RevenueByCountry(rows []domain.AnalyticsRow) []RevenueRow {
	groups := lo.GroupBy(rows, func(r domain.AnalyticsRow) string {
		return r.Country.Value
	})

	report := make([]RevenueRow, 0, len(groups))
	for country, members := range groups {
		amounts := lo.Map(members, func(r domain.AnalyticsRow, _ int) domain.Float { return r.Amount })
		report = append(report, RevenueRow{
			Country:      country,
			TotalRevenue: Sum(amounts),
			OrderCount:   len(members),
		})
	}

	sort.Slice(report, func(i, j int) bool {
		if report[i].TotalRevenue != report[j].TotalRevenue {
			return report[i].TotalRevenue > report[j].TotalRevenue
		}
		return report[i].Country < report[j].Country
	})

	return report
}
