package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/ids"
)

// Service validates and executes resource operations. Authorization has
// already happened by the time a call lands here; the workspace id is the
// one the access pipeline resolved.
type Service struct {
	store Store
}

// NewService constructs the resource service over a Store.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("finance store is required")
	}
	return &Service{store: store}, nil
}

// ListTransactions returns workspace transactions, date desc then created_at
// desc, optionally filtered.
func (s *Service) ListTransactions(ctx context.Context, workspaceID string, filter TransactionFilter) ([]Transaction, error) {
	if filter.Type != "" && filter.Type != TypeIncome && filter.Type != TypeExpense {
		return nil, fmt.Errorf("%w: type must be income or expense", auth.ErrInvalidInput)
	}
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := parseDate(d); err != nil {
			return nil, err
		}
	}
	return s.store.ListTransactions(ctx, workspaceID, filter)
}

// CreateTransaction records an income or expense entry.
func (s *Service) CreateTransaction(ctx context.Context, workspaceID, userID string, txn Transaction) (Transaction, error) {
	txn.Type = strings.TrimSpace(strings.ToLower(txn.Type))
	if txn.Type != TypeIncome && txn.Type != TypeExpense {
		return Transaction{}, fmt.Errorf("%w: type must be income or expense", auth.ErrInvalidInput)
	}
	if txn.Amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: amount must be positive", auth.ErrInvalidInput)
	}
	txn.Category = strings.TrimSpace(txn.Category)
	if txn.Category == "" {
		return Transaction{}, fmt.Errorf("%w: category is required", auth.ErrInvalidInput)
	}
	date, err := parseDate(txn.Date)
	if err != nil {
		return Transaction{}, err
	}

	txn.ID = ids.New(ids.PrefixTransaction)
	txn.WorkspaceID = workspaceID
	txn.UserID = userID
	txn.Date = date
	txn.Description = strings.TrimSpace(txn.Description)
	return s.store.CreateTransaction(ctx, txn)
}

// UpdateTransaction applies a typed partial update. An empty effective change
// set is invalid input; a row outside the workspace is not found.
func (s *Service) UpdateTransaction(ctx context.Context, workspaceID, id string, upd TransactionUpdate) error {
	if upd.IsEmpty() {
		return fmt.Errorf("%w: No valid fields to update", auth.ErrInvalidInput)
	}
	if upd.Type != nil {
		typ := strings.TrimSpace(strings.ToLower(*upd.Type))
		if typ != TypeIncome && typ != TypeExpense {
			return fmt.Errorf("%w: type must be income or expense", auth.ErrInvalidInput)
		}
		upd.Type = &typ
	}
	if upd.Amount != nil && *upd.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", auth.ErrInvalidInput)
	}
	if upd.Category != nil {
		category := strings.TrimSpace(*upd.Category)
		if category == "" {
			return fmt.Errorf("%w: category is required", auth.ErrInvalidInput)
		}
		upd.Category = &category
	}
	if upd.Date != nil {
		date, err := parseDate(*upd.Date)
		if err != nil {
			return err
		}
		upd.Date = &date
	}
	return s.store.UpdateTransaction(ctx, workspaceID, id, upd)
}

// DeleteTransaction removes a workspace-scoped row.
func (s *Service) DeleteTransaction(ctx context.Context, workspaceID, id string) error {
	return s.store.DeleteTransaction(ctx, workspaceID, id)
}

// ListBudgets returns workspace budgets newest first, each with its computed
// spent total.
func (s *Service) ListBudgets(ctx context.Context, workspaceID string) ([]Budget, error) {
	return s.store.ListBudgets(ctx, workspaceID)
}

// CreateBudget records a category spending cap over a date window.
func (s *Service) CreateBudget(ctx context.Context, workspaceID, userID string, b Budget) (Budget, error) {
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		return Budget{}, fmt.Errorf("%w: category is required", auth.ErrInvalidInput)
	}
	if b.Amount <= 0 {
		return Budget{}, fmt.Errorf("%w: amount must be positive", auth.ErrInvalidInput)
	}
	b.Period = strings.TrimSpace(strings.ToLower(b.Period))
	if b.Period != PeriodMonthly && b.Period != PeriodYearly {
		return Budget{}, fmt.Errorf("%w: period must be monthly or yearly", auth.ErrInvalidInput)
	}
	start, err := parseDate(b.StartDate)
	if err != nil {
		return Budget{}, err
	}
	end, err := parseDate(b.EndDate)
	if err != nil {
		return Budget{}, err
	}
	if end < start {
		return Budget{}, fmt.Errorf("%w: end date precedes start date", auth.ErrInvalidInput)
	}

	b.ID = ids.New(ids.PrefixBudget)
	b.WorkspaceID = workspaceID
	b.UserID = userID
	b.StartDate = start
	b.EndDate = end
	return s.store.CreateBudget(ctx, b)
}

// DeleteBudget removes a workspace-scoped budget.
func (s *Service) DeleteBudget(ctx context.Context, workspaceID, id string) error {
	return s.store.DeleteBudget(ctx, workspaceID, id)
}

// ListGoals returns workspace goals ordered by deadline ascending.
func (s *Service) ListGoals(ctx context.Context, workspaceID string) ([]Goal, error) {
	return s.store.ListGoals(ctx, workspaceID)
}

// CreateGoal records a savings target; the running total starts at zero.
func (s *Service) CreateGoal(ctx context.Context, workspaceID, userID string, g Goal) (Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return Goal{}, fmt.Errorf("%w: name is required", auth.ErrInvalidInput)
	}
	if g.TargetAmount <= 0 {
		return Goal{}, fmt.Errorf("%w: target amount must be positive", auth.ErrInvalidInput)
	}
	deadline, err := parseDate(g.Deadline)
	if err != nil {
		return Goal{}, err
	}

	g.ID = ids.New(ids.PrefixGoal)
	g.WorkspaceID = workspaceID
	g.UserID = userID
	g.Deadline = deadline
	g.CurrentAmount = 0
	return s.store.CreateGoal(ctx, g)
}

// Contribute adds to a goal's running total and returns the new amount.
func (s *Service) Contribute(ctx context.Context, workspaceID, id string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", auth.ErrInvalidInput)
	}
	return s.store.ContributeToGoal(ctx, workspaceID, id, amount)
}

// DeleteGoal removes a workspace-scoped goal.
func (s *Service) DeleteGoal(ctx context.Context, workspaceID, id string) error {
	return s.store.DeleteGoal(ctx, workspaceID, id)
}

// parseDate accepts ISO YYYY-MM-DD (or a full RFC 3339 timestamp) and
// normalizes to the date-only form used in storage.
func parseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: date is required", auth.ErrInvalidInput)
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2006-01-02"), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("%w: date must be ISO formatted (YYYY-MM-DD)", auth.ErrInvalidInput)
}
