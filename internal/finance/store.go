package finance

import "context"

// Store describes persistence for the workspace-scoped resource entities.
// Every operation takes the resolved workspace id; rows outside it must be
// indistinguishable from absent rows (auth.ErrNotFound).
type Store interface {
	ListTransactions(ctx context.Context, workspaceID string, filter TransactionFilter) ([]Transaction, error)
	CreateTransaction(ctx context.Context, txn Transaction) (Transaction, error)
	UpdateTransaction(ctx context.Context, workspaceID, id string, upd TransactionUpdate) error
	DeleteTransaction(ctx context.Context, workspaceID, id string) error

	ListBudgets(ctx context.Context, workspaceID string) ([]Budget, error)
	CreateBudget(ctx context.Context, b Budget) (Budget, error)
	DeleteBudget(ctx context.Context, workspaceID, id string) error

	ListGoals(ctx context.Context, workspaceID string) ([]Goal, error)
	CreateGoal(ctx context.Context, g Goal) (Goal, error)
	// ContributeToGoal atomically increments current_amount and returns the
	// new total.
	ContributeToGoal(ctx context.Context, workspaceID, id string, amount float64) (float64, error)
	DeleteGoal(ctx context.Context, workspaceID, id string) error
}
