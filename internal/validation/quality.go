// Package validation provides the data-quality checks that gate every
// pipeline run: required columns, non-empty tables, unique join keys and
// value ranges. Each check returns a typed validation error; callers abort
// the run on the first failure.
package validation

import (
	"fmt"

	"github.com/samber/lo"

	"etlcli/internal/errors"
	"etlcli/pkg/contracts/domain"
)

// RequireColumns verifies that every required column is present in the
// header row. Extra columns are allowed.
func RequireColumns(header []string, required []string) error {
	missing, _ := lo.Difference(required, header)
	if len(missing) > 0 {
		return errors.NewValidationError(fmt.Sprintf("missing required columns: %v", missing)).
			WithContext("missing", missing)
	}
	return nil
}

// NonEmpty verifies the table has at least one row.
func NonEmpty(name string, n int) error {
	if n == 0 {
		return errors.NewValidationError(fmt.Sprintf("%s table is empty", name))
	}
	return nil
}

// UniqueKey verifies that key values are unique across rows. Unless allowNA
// is set, an empty key is also an error.
func UniqueKey(name string, keys []string, allowNA bool) error {
	if !allowNA {
		blank := lo.CountBy(keys, func(k string) bool { return k == "" })
		if blank > 0 {
			return errors.NewValidationError(fmt.Sprintf("%s contains NA", name)).
				WithContext("na_count", blank)
		}
	}

	counts := lo.CountValues(lo.Filter(keys, func(k string, _ int) bool { return k != "" }))
	dups := 0
	for _, c := range counts {
		if c > 1 {
			dups += c
		}
	}
	if dups > 0 {
		return errors.NewValidationError(fmt.Sprintf("%s not unique; %d duplicate rows", name, dups)).
			WithContext("duplicate_rows", dups)
	}
	return nil
}

// InRangeFloat verifies that every non-null value lies within [lo, hi].
// Pass nil to skip a bound. Null cells are ignored, matching how the range
// checks treat NA in the source data.
func InRangeFloat(name string, values []domain.Float, low, high *float64) error {
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if low != nil && v.Value < *low {
			return errors.NewValidationError(fmt.Sprintf("%s below %v", name, *low)).
				WithContext("value", v.Value)
		}
		if high != nil && v.Value > *high {
			return errors.NewValidationError(fmt.Sprintf("%s above %v", name, *high)).
				WithContext("value", v.Value)
		}
	}
	return nil
}

// InRangeInt verifies that every non-null value lies within [lo, hi].
func InRangeInt(name string, values []domain.Int, low, high *int64) error {
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if low != nil && v.Value < *low {
			return errors.NewValidationError(fmt.Sprintf("%s below %v", name, *low)).
				WithContext("value", v.Value)
		}
		if high != nil && v.Value > *high {
			return errors.NewValidationError(fmt.Sprintf("%s above %v", name, *high)).
				WithContext("value", v.Value)
		}
	}
	return nil
}

// Float64Ptr is a convenience for building range bounds.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr is a convenience for building range bounds.
func Int64Ptr(v int64) *int64 { return &v }
