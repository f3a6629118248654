package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"etlcli/pkg/contracts/domain"
)

// timestampLayouts are tried in order when coercing timestamp cells.
// Layouts without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// CoerceFloat parses a numeric cell. Unparseable or empty cells become null.
func CoerceFloat(cell string) domain.Float {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if cell == "" {
		return domain.Float{}
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return domain.Float{}
	}
	return domain.NewFloat(v)
}

// CoerceInt parses an integer cell. A fractional value that is an exact
// integer (e.g. "3.0") coerces to that integer; anything else becomes null.
func CoerceInt(cell string) domain.Int {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if cell == "" {
		return domain.Int{}
	}
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return domain.NewInt(v)
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != float64(int64(f)) {
		return domain.Int{}
	}
	return domain.NewInt(int64(f))
}

// CoerceTime parses a timestamp cell into UTC. Unparseable cells become null.
func CoerceTime(cell string) domain.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return domain.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return domain.NewTime(t)
		}
	}
	return domain.Time{}
}

// CoerceString parses a nullable text cell. Empty cells become null.
func CoerceString(cell string) domain.String {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return domain.String{}
	}
	return domain.NewString(cell)
}

// EnforceOrderSchema re-coerces the typed columns of order rows. Parsing
// already produces coerced cells, so applying this twice is a no-op; it
// exists so callers reading back previously written tables get the same
// column types regardless of source.
func EnforceOrderSchema(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		o.OrderID = strings.TrimSpace(o.OrderID)
		o.UserID = strings.TrimSpace(o.UserID)
		out[i] = o
	}
	return out
}

// EnforceUserSchema re-coerces the typed columns of user rows.
func EnforceUserSchema(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i, u := range users {
		u.UserID = strings.TrimSpace(u.UserID)
		out[i] = u
	}
	return out
}
