package models

import "time"

// Categories lists the expense categories offered during review.
var Categories = []string{
	"Groceries", "Dining", "Transport", "Shopping",
	"Entertainment", "Utilities", "Healthcare", "Other",
}

// Expense is a stored expense created from a reviewed receipt scan.
type Expense struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Vendor    string     `json:"vendor"`
	Amount    float64    `json:"amount"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Category  string     `json:"category"`
	ImagePath string     `json:"image_path,omitempty"`
	Items     []LineItem `json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// LineItem is an itemized row attached to an expense.
type LineItem struct {
	ID         int64    `json:"id"`
	ExpenseID  int64    `json:"expense_id"`
	Name       string   `json:"name"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`
	TotalPrice float64  `json:"total_price"`
}

// CategoryTotal is one row of the dashboard category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}
