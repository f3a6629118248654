package domain

// UserColumns are the required columns of the raw users CSV, in input order.
var UserColumns = []string{"user_id", "country", "signup_date"}

// User represents one row of the users table after schema enforcement.
// UserID is the join key and must be unique and non-null.
type User struct {
	UserID     string `json:"user_id" csv:"user_id"`
	Country    String `json:"country" csv:"country"`
	SignupDate Time   `json:"signup_date" csv:"signup_date"`
}

// SignupParts returns the time grouping keys derived from SignupDate.
func (u User) SignupParts() TimeParts {
	return NewTimeParts(u.SignupDate)
}
