package domain

// OrderColumns are the required columns of the raw orders CSV, in input order.
var OrderColumns = []string{"order_id", "user_id", "amount", "quantity", "status", "created_at"}

// Order represents one row of the orders table after schema enforcement.
// Unparseable numeric or timestamp cells are null, never an error.
type Order struct {
	OrderID   string `json:"order_id" csv:"order_id"`
	UserID    string `json:"user_id" csv:"user_id"`
	Amount    Float  `json:"amount" csv:"amount"`
	Quantity  Int    `json:"quantity" csv:"quantity"`
	Status    string `json:"status" csv:"status"`
	CreatedAt Time   `json:"created_at" csv:"created_at"`

	// Derived cleaning columns, populated by the clean/transform steps.
	StatusClean     string `json:"status_clean,omitempty" csv:"status_clean"`
	AmountMissing   bool   `json:"amount__isna" csv:"amount__isna"`
	QuantityMissing bool   `json:"quantity__isna" csv:"quantity__isna"`
}

// CreatedParts returns the time grouping keys derived from CreatedAt.
func (o Order) CreatedParts() TimeParts {
	return NewTimeParts(o.CreatedAt)
}
