package dataprocessing

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"etlcli/internal/errors"
	"etlcli/pkg/contracts/domain"
)

// SafeLeftJoin joins orders to users on user_id with many-to-one
// validation: a duplicated user_id on the right side is an error, and the
// result always has exactly one row per input order. Orders without a
// matching user keep null user-side columns. Time parts for both
// timestamps are derived on the way through.
func SafeLeftJoin(orders []domain.Order, users []domain.User) ([]domain.AnalyticsRow, domain.JoinStats, error) {
	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		if _, exists := byID[u.UserID]; exists {
			return nil, domain.JoinStats{}, errors.NewJoinError(
				fmt.Sprintf("join validation many_to_one failed: user_id %q duplicated on right side", u.UserID))
		}
		byID[u.UserID] = u
	}

	rows := make([]domain.AnalyticsRow, 0, len(orders))
	missingTS := 0
	matchedCountry := 0
	for _, o := range orders {
		row := domain.AnalyticsRow{
			Order:   o,
			Created: o.CreatedParts(),
		}
		if !o.CreatedAt.Valid {
			missingTS++
		}
		if u, ok := byID[o.UserID]; ok {
			row.Matched = true
			row.Country = u.Country
			row.SignupDate = u.SignupDate
			row.SignupParts = u.SignupParts()
		}
		if row.Country.Valid {
			matchedCountry++
		}
		rows = append(rows, row)
	}

	if len(rows) != len(orders) {
		return nil, domain.JoinStats{}, errors.NewJoinError("join resulted in row count change")
	}

	stats := domain.JoinStats{
		Rows:             len(rows),
		MissingCreatedAt: missingTS,
	}
	if len(rows) > 0 {
		stats.CountryMatchRate = float64(matchedCountry) / float64(len(rows))
	}

	slog.Info("Joined orders to users",
		slog.Int("rows", stats.Rows),
		slog.Int("missing_created_at", stats.MissingCreatedAt),
		slog.Float64("country_match_rate", stats.CountryMatchRate))

	return rows, stats, nil
}

// FlagAmountOutliers populates amount__is_outlier over the joined rows
// using IQR bounds with multiplier k.
func FlagAmountOutliers(rows []domain.AnalyticsRow, k float64) []domain.AnalyticsRow {
	amounts := lo.Map(rows, func(r domain.AnalyticsRow, _ int) domain.Float { return r.Amount })
	lower, upper := IQRBounds(amounts, k)

	out := make([]domain.AnalyticsRow, len(rows))
	for i, r := range rows {
		r.AmountOutlier = IsOutlier(r.Amount, lower, upper)
		out[i] = r
	}
	return out
}

// WinsorizeAmounts populates amount_winsor over the joined rows, clipping
// amounts to the [lo, hi] percentile bounds.
func WinsorizeAmounts(rows []domain.AnalyticsRow, low, high float64) []domain.AnalyticsRow {
	amounts := lo.Map(rows, func(r domain.AnalyticsRow, _ int) domain.Float { return r.Amount })
	winsored := Winsorize(amounts, low, high)

	out := make([]domain.AnalyticsRow, len(rows))
	for i, r := range rows {
		r.AmountWinsor = winsored[i]
		out[i] = r
	}
	return out
}
