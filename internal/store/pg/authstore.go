package pg

import (
	"context"
	"database/sql"
	"errors"

	"budgetbook.org/internal/auth"
)

var _ auth.Store = (*Store)(nil)

func (s *Store) Register(ctx context.Context, reg auth.Registration) (auth.User, error) {
	if s.db == nil {
		return auth.User{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return auth.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var user auth.User
	row := tx.QueryRowContext(ctx, `
		insert into users (id, email, password_hash, display_name)
		values ($1, $2, $3, $4)
		returning id, email, password_hash, display_name, created_at, updated_at
	`, reg.UserID, reg.Email, reg.PasswordHash, reg.DisplayName)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.User{}, auth.ErrConflict
		}
		return auth.User{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		insert into workspaces (id, name, owner_id)
		values ($1, $2, $3)
	`, reg.WorkspaceID, reg.WorkspaceName, reg.UserID); err != nil {
		return auth.User{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		insert into workspace_members (id, workspace_id, user_id, role)
		values ($1, $2, $3, 'owner')
	`, reg.MemberID, reg.WorkspaceID, reg.UserID); err != nil {
		return auth.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	if s.db == nil {
		return auth.User{}, errors.New("database connection unavailable")
	}
	var user auth.User
	err := s.db.QueryRowContext(ctx, `
		select id, email, password_hash, display_name, created_at, updated_at
		from users
		where email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	return user, nil
}

func (s *Store) OwnedWorkspaceID(ctx context.Context, userID string) (string, error) {
	if s.db == nil {
		return "", errors.New("database connection unavailable")
	}
	var id string
	err := s.db.QueryRowContext(ctx, `
		select workspace_id
		from workspace_members
		where user_id = $1 and role = 'owner'
		order by joined_at asc
		limit 1
	`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
