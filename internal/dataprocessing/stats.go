package dataprocessing

import (
	"math"
	"sort"

	"etlcli/pkg/contracts/domain"
)

// Interpolation selects how a quantile between two data points is resolved.
type Interpolation int

const (
	// InterpLinear interpolates linearly between the neighboring points.
	InterpLinear Interpolation = iota
	// InterpLower takes the lower neighboring point.
	InterpLower
	// InterpHigher takes the higher neighboring point.
	InterpHigher
)

// dropNull collects the non-null values of a nullable float column.
func dropNull(values []domain.Float) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// Quantile computes the q-th quantile (0..1) of xs with the given
// interpolation. Returns NaN for an empty input.
func Quantile(xs []float64, q float64, interp Interpolation) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))

	switch interp {
	case InterpLower:
		return sorted[lower]
	case InterpHigher:
		return sorted[upper]
	default:
		if lower == upper {
			return sorted[lower]
		}
		frac := pos - float64(lower)
		return sorted[lower]*(1-frac) + sorted[upper]*frac
	}
}

// IQRBounds returns the (lo, hi) outlier bounds for the column: Q1 − k·IQR
// and Q3 + k·IQR, with Q1 taken at the lower and Q3 at the higher
// neighboring data point. Null cells are skipped.
func IQRBounds(values []domain.Float, k float64) (float64, float64) {
	xs := dropNull(values)
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	q1 := Quantile(xs, 0.25, InterpLower)
	q3 := Quantile(xs, 0.75, InterpHigher)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// IsOutlier reports whether a cell falls strictly outside the bounds.
// Null cells are never outliers.
func IsOutlier(v domain.Float, lo, hi float64) bool {
	if !v.Valid || math.IsNaN(lo) || math.IsNaN(hi) {
		return false
	}
	return v.Value < lo || v.Value > hi
}

// CountOutliers counts the cells outside the IQR bounds of the column.
func CountOutliers(values []domain.Float, k float64) int {
	lo, hi := IQRBounds(values, k)
	n := 0
	for _, v := range values {
		if IsOutlier(v, lo, hi) {
			n++
		}
	}
	return n
}

// WinsorBounds returns the clipping bounds at the lo/hi percentiles of the
// column using linear interpolation.
func WinsorBounds(values []domain.Float, lo, hi float64) (float64, float64) {
	xs := dropNull(values)
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	return Quantile(xs, lo, InterpLinear), Quantile(xs, hi, InterpLinear)
}

// Winsorize clips the column to its [lo, hi] percentile bounds. Null cells
// stay null; an all-null column is returned unchanged.
func Winsorize(values []domain.Float, lo, hi float64) []domain.Float {
	a, b := WinsorBounds(values, lo, hi)
	out := make([]domain.Float, len(values))
	for i, v := range values {
		if !v.Valid || math.IsNaN(a) {
			out[i] = v
			continue
		}
		clipped := v.Value
		if clipped < a {
			clipped = a
		}
		if clipped > b {
			clipped = b
		}
		out[i] = domain.NewFloat(clipped)
	}
	return out
}

// Sum adds the non-null cells of the column.
func Sum(values []domain.Float) float64 {
	total := 0.0
	for _, v := range values {
		if v.Valid {
			total += v.Value
		}
	}
	return total
}

// Mean averages the non-null cells of the column. Returns NaN when every
// cell is null.
func Mean(values []domain.Float) float64 {
	xs := dropNull(values)
	if len(xs) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}
