package domain

import (
	"strconv"
	"time"
)

// Float is a nullable float64 cell. The zero value is null.
type Float struct {
	Value float64
	Valid bool
}

// NewFloat returns a valid Float.
func NewFloat(v float64) Float {
	return Float{Value: v, Valid: true}
}

// String formats the value for CSV output. Null cells render empty.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Int is a nullable int64 cell. The zero value is null.
type Int struct {
	Value int64
	Valid bool
}

// NewInt returns a valid Int.
func NewInt(v int64) Int {
	return Int{Value: v, Valid: true}
}

func (i Int) String() string {
	if !i.Valid {
		return ""
	}
	return strconv.FormatInt(i.Value, 10)
}

// Time is a nullable UTC timestamp cell. The zero value is null.
type Time struct {
	Value time.Time
	Valid bool
}

// NewTime returns a valid Time normalized to UTC.
func NewTime(v time.Time) Time {
	return Time{Value: v.UTC(), Valid: true}
}

func (t Time) String() string {
	if !t.Valid {
		return ""
	}
	return t.Value.Format(time.RFC3339)
}

// String is a nullable string cell. Empty source cells are null rather than
// empty strings, matching how the raw CSVs encode missing values.
type String struct {
	Value string
	Valid bool
}

// NewString returns a valid String.
func NewString(v string) String {
	return String{Value: v, Valid: true}
}

func (s String) String() string {
	return s.Value
}
