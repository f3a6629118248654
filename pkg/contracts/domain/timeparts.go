package domain

import "fmt"

// TimeParts are the common time grouping keys derived from a timestamp
// column: calendar date, year, month period ("2006-01"), weekday name and
// hour of day. A null source timestamp yields null parts.
type TimeParts struct {
	Date  String `json:"date" csv:"date"`
	Year  Int    `json:"year" csv:"year"`
	Month String `json:"month" csv:"month"`
	DOW   String `json:"dow" csv:"dow"`
	Hour  Int    `json:"hour" csv:"hour"`
}

// NewTimeParts derives grouping keys from a nullable timestamp.
func NewTimeParts(ts Time) TimeParts {
	if !ts.Valid {
		return TimeParts{}
	}
	t := ts.Value
	return TimeParts{
		Date:  NewString(t.Format("2006-01-02")),
		Year:  NewInt(int64(t.Year())),
		Month: NewString(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))),
		DOW:   NewString(t.Weekday().String()),
		Hour:  NewInt(int64(t.Hour())),
	}
}
