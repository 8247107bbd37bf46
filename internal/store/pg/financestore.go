package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/finance"
)

var _ finance.Store = (*Store)(nil)

func (s *Store) ListTransactions(ctx context.Context, workspaceID string, filter finance.TransactionFilter) ([]finance.Transaction, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}

	var (
		conds = []string{"t.workspace_id = $1"}
		args  = []any{workspaceID}
		idx   = 2
	)
	if filter.StartDate != "" {
		conds = append(conds, fmt.Sprintf("t.date >= $%d", idx))
		args = append(args, filter.StartDate)
		idx++
	}
	if filter.EndDate != "" {
		conds = append(conds, fmt.Sprintf("t.date <= $%d", idx))
		args = append(args, filter.EndDate)
		idx++
	}
	if filter.Type != "" {
		conds = append(conds, fmt.Sprintf("t.type = $%d", idx))
		args = append(args, filter.Type)
		idx++
	}
	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("t.category = $%d", idx))
		args = append(args, filter.Category)
		idx++
	}

	query := fmt.Sprintf(`
		select t.id, t.workspace_id, t.user_id, t.type, t.amount, t.category,
		       coalesce(t.description, ''), to_char(t.date, 'YYYY-MM-DD'),
		       u.display_name, t.created_at, t.updated_at
		from transactions t
		join users u on u.id = t.user_id
		where %s
		order by t.date desc, t.created_at desc
	`, strings.Join(conds, " and "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.Transaction
	for rows.Next() {
		var t finance.Transaction
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.UserID, &t.Type, &t.Amount, &t.Category,
			&t.Description, &t.Date, &t.UserName, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn finance.Transaction) (finance.Transaction, error) {
	if s.db == nil {
		return finance.Transaction{}, errors.New("database connection unavailable")
	}
	var created finance.Transaction
	row := s.db.QueryRowContext(ctx, `
		insert into transactions (id, workspace_id, user_id, type, amount, category, description, date)
		values ($1, $2, $3, $4, $5, $6, nullif($7, ''), $8)
		returning id, workspace_id, user_id, type, amount, category,
		          coalesce(description, ''), to_char(date, 'YYYY-MM-DD'), created_at, updated_at
	`, txn.ID, txn.WorkspaceID, txn.UserID, txn.Type, txn.Amount, txn.Category, txn.Description, txn.Date)
	if err := row.Scan(&created.ID, &created.WorkspaceID, &created.UserID, &created.Type, &created.Amount,
		&created.Category, &created.Description, &created.Date, &created.CreatedAt, &created.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return finance.Transaction{}, auth.ErrNotFound
		}
		return finance.Transaction{}, err
	}
	return created, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, workspaceID, id string, upd finance.TransactionUpdate) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.Type != nil {
		sets = append(sets, fmt.Sprintf("type = $%d", idx))
		args = append(args, *upd.Type)
		idx++
	}
	if upd.Amount != nil {
		sets = append(sets, fmt.Sprintf("amount = $%d", idx))
		args = append(args, *upd.Amount)
		idx++
	}
	if upd.Category != nil {
		sets = append(sets, fmt.Sprintf("category = $%d", idx))
		args = append(args, *upd.Category)
		idx++
	}
	if upd.Description != nil {
		sets = append(sets, fmt.Sprintf("description = nullif($%d, '')", idx))
		args = append(args, *upd.Description)
		idx++
	}
	if upd.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", idx))
		args = append(args, *upd.Date)
		idx++
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`update transactions set %s where workspace_id = $%d and id = $%d`,
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, workspaceID, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, workspaceID, id string) error {
	return s.deleteScoped(ctx, "transactions", workspaceID, id)
}

func (s *Store) ListBudgets(ctx context.Context, workspaceID string) ([]finance.Budget, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select b.id, b.workspace_id, b.user_id, b.category, b.amount, b.period,
		       to_char(b.start_date, 'YYYY-MM-DD'), to_char(b.end_date, 'YYYY-MM-DD'),
		       coalesce((
		           select sum(t.amount) from transactions t
		           where t.workspace_id = b.workspace_id
		             and t.type = 'expense'
		             and t.category = b.category
		             and t.date between b.start_date and b.end_date
		       ), 0) as spent,
		       u.display_name, b.created_at, b.updated_at
		from budgets b
		join users u on u.id = b.user_id
		where b.workspace_id = $1
		order by b.created_at desc
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.Budget
	for rows.Next() {
		var b finance.Budget
		if err := rows.Scan(&b.ID, &b.WorkspaceID, &b.UserID, &b.Category, &b.Amount, &b.Period,
			&b.StartDate, &b.EndDate, &b.Spent, &b.UserName, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateBudget(ctx context.Context, b finance.Budget) (finance.Budget, error) {
	if s.db == nil {
		return finance.Budget{}, errors.New("database connection unavailable")
	}
	var created finance.Budget
	row := s.db.QueryRowContext(ctx, `
		insert into budgets (id, workspace_id, user_id, category, amount, period, start_date, end_date)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id, workspace_id, user_id, category, amount, period,
		          to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'), created_at, updated_at
	`, b.ID, b.WorkspaceID, b.UserID, b.Category, b.Amount, b.Period, b.StartDate, b.EndDate)
	if err := row.Scan(&created.ID, &created.WorkspaceID, &created.UserID, &created.Category, &created.Amount,
		&created.Period, &created.StartDate, &created.EndDate, &created.CreatedAt, &created.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return finance.Budget{}, auth.ErrNotFound
		}
		return finance.Budget{}, err
	}
	return created, nil
}

func (s *Store) DeleteBudget(ctx context.Context, workspaceID, id string) error {
	return s.deleteScoped(ctx, "budgets", workspaceID, id)
}

func (s *Store) ListGoals(ctx context.Context, workspaceID string) ([]finance.Goal, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select g.id, g.workspace_id, g.user_id, g.name, g.target_amount, g.current_amount,
		       to_char(g.deadline, 'YYYY-MM-DD'), u.display_name, g.created_at, g.updated_at
		from goals g
		join users u on u.id = g.user_id
		where g.workspace_id = $1
		order by g.deadline asc
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []finance.Goal
	for rows.Next() {
		var g finance.Goal
		if err := rows.Scan(&g.ID, &g.WorkspaceID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
			&g.Deadline, &g.UserName, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateGoal(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	if s.db == nil {
		return finance.Goal{}, errors.New("database connection unavailable")
	}
	var created finance.Goal
	row := s.db.QueryRowContext(ctx, `
		insert into goals (id, workspace_id, user_id, name, target_amount, current_amount, deadline)
		values ($1, $2, $3, $4, $5, 0, $6)
		returning id, workspace_id, user_id, name, target_amount, current_amount,
		          to_char(deadline, 'YYYY-MM-DD'), created_at, updated_at
	`, g.ID, g.WorkspaceID, g.UserID, g.Name, g.TargetAmount, g.Deadline)
	if err := row.Scan(&created.ID, &created.WorkspaceID, &created.UserID, &created.Name, &created.TargetAmount,
		&created.CurrentAmount, &created.Deadline, &created.CreatedAt, &created.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return finance.Goal{}, auth.ErrNotFound
		}
		return finance.Goal{}, err
	}
	return created, nil
}

func (s *Store) ContributeToGoal(ctx context.Context, workspaceID, id string, amount float64) (float64, error) {
	if s.db == nil {
		return 0, errors.New("database connection unavailable")
	}
	var total float64
	err := s.db.QueryRowContext(ctx, `
		update goals set current_amount = current_amount + $3, updated_at = now()
		where workspace_id = $1 and id = $2
		returning current_amount
	`, workspaceID, id, amount).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, auth.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) DeleteGoal(ctx context.Context, workspaceID, id string) error {
	return s.deleteScoped(ctx, "goals", workspaceID, id)
}

func (s *Store) deleteScoped(ctx context.Context, table, workspaceID, id string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`delete from %s where workspace_id = $1 and id = $2`, table), workspaceID, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}
