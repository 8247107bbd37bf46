package finance

import "time"

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Budget periods.
const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Transaction is a single income or expense entry, scoped to exactly one
// workspace and attributed to the creating user. Dates travel as ISO
// YYYY-MM-DD strings end to end; see DESIGN.md.
type Transaction struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	UserName    string    `json:"user_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionFilter narrows transaction listings. Zero values mean "no
// constraint".
type TransactionFilter struct {
	StartDate string
	EndDate   string
	Type      string
	Category  string
}

// TransactionUpdate is the typed partial-update for transactions: only the
// mutable fields exist, as optional members. Unknown JSON keys are rejected
// at the deserialization boundary, not filtered here.
type TransactionUpdate struct {
	Type        *string  `json:"type"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

// IsEmpty reports whether the update carries no effective change.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Type == nil && u.Amount == nil && u.Category == nil &&
		u.Description == nil && u.Date == nil
}

// Budget caps spending for one category over a date window. Spent is computed
// at read time from expense transactions in the window.
type Budget struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Period      string    `json:"period"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Spent       float64   `json:"spent"`
	UserName    string    `json:"user_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Goal is a savings target with a running contribution total.
type Goal struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	Deadline      string    `json:"deadline"`
	UserName      string    `json:"user_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
