package dataprocessing

import (
	"regexp"
	"sort"
	"strings"

	"etlcli/pkg/contracts/domain"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// StatusMapping is the canonical order-status mapping applied after
// normalization. Unmapped statuses pass through unchanged.
var StatusMapping = map[string]string{
	"paid":     "paid",
	"refund":   "refund",
	"refunded": "refund",
}

// NormalizeText normalizes a text value: trim, lowercase, collapse internal
// whitespace runs to single spaces.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// ApplyMapping maps a value through the mapping, keeping unmapped values
// unchanged.
func ApplyMapping(s string, mapping map[string]string) string {
	if mapped, ok := mapping[s]; ok {
		return mapped
	}
	return s
}

// CleanStatus normalizes a raw status and applies the canonical mapping.
func CleanStatus(status string) string {
	return ApplyMapping(NormalizeText(status), StatusMapping)
}

// AddMissingFlags populates the amount/quantity missing-value flag columns.
func AddMissingFlags(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		o.AmountMissing = !o.Amount.Valid
		o.QuantityMissing = !o.Quantity.Valid
		out[i] = o
	}
	return out
}

// DedupeKeepLatest removes duplicate orders by key, keeping the row with
// the latest timestamp. Rows with a null timestamp sort before any valid
// timestamp, so a valid row always wins over a null one; ties keep the
// later input row.
func DedupeKeepLatest(orders []domain.Order, key func(domain.Order) string, ts func(domain.Order) domain.Time) []domain.Order {
	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := ts(sorted[i]), ts(sorted[j])
		switch {
		case !a.Valid && b.Valid:
			return true
		case a.Valid && !b.Valid:
			return false
		case !a.Valid && !b.Valid:
			return false
		default:
			return a.Value.Before(b.Value)
		}
	})

	latest := make(map[string]int, len(sorted))
	for i, o := range sorted {
		latest[key(o)] = i
	}

	kept := make([]int, 0, len(latest))
	for _, idx := range latest {
		kept = append(kept, idx)
	}
	sort.Ints(kept)

	out := make([]domain.Order, 0, len(kept))
	for _, idx := range kept {
		out = append(out, sorted[idx])
	}
	return out
}
