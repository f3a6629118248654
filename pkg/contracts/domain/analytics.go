package domain

// AnalyticsRow is one row of the analysis table: an order joined with its
// user under many-to-one validation, plus time parts for both timestamps and
// the outlier/winsorization columns on amount. User-side fields are null for
// orders whose user_id has no match.
type AnalyticsRow struct {
	Order

	// Time parts from created_at.
	Created TimeParts `json:"created_parts"`

	// User-side columns. Joined time parts carry the _user suffix in output.
	Country     String    `json:"country"`
	SignupDate  Time      `json:"signup_date"`
	SignupParts TimeParts `json:"signup_parts"`
	Matched     bool      `json:"matched"`

	AmountWinsor  Float `json:"amount_winsor"`
	AmountOutlier bool  `json:"amount__is_outlier"`
}

// JoinStats summarizes a validated orders-to-users join.
type JoinStats struct {
	Rows             int     `json:"rows"`
	MissingCreatedAt int     `json:"missing_created_at"`
	CountryMatchRate float64 `json:"country_match_rate"`
}
