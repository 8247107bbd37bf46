package pg

import (
	"context"
	"database/sql"
	"errors"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/workspace"
)

var _ workspace.Store = (*Store)(nil)

func (s *Store) CreateWorkspace(ctx context.Context, ws workspace.Workspace, ownerMemberID string) (workspace.Workspace, error) {
	if s.db == nil {
		return workspace.Workspace{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return workspace.Workspace{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var created workspace.Workspace
	row := tx.QueryRowContext(ctx, `
		insert into workspaces (id, name, owner_id)
		values ($1, $2, $3)
		returning id, name, owner_id, created_at, updated_at
	`, ws.ID, ws.Name, ws.OwnerID)
	if err := row.Scan(&created.ID, &created.Name, &created.OwnerID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return workspace.Workspace{}, auth.ErrNotFound
		}
		return workspace.Workspace{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		insert into workspace_members (id, workspace_id, user_id, role)
		values ($1, $2, $3, 'owner')
	`, ownerMemberID, ws.ID, ws.OwnerID); err != nil {
		return workspace.Workspace{}, err
	}

	if err := tx.Commit(); err != nil {
		return workspace.Workspace{}, err
	}
	return created, nil
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]workspace.Summary, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select w.id, w.name, w.owner_id, w.created_at, w.updated_at, m.role,
		       (select count(*) from workspace_members c where c.workspace_id = w.id) as member_count
		from workspaces w
		join workspace_members m on m.workspace_id = w.id
		where m.user_id = $1
		order by w.created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []workspace.Summary
	for rows.Next() {
		var sum workspace.Summary
		var role string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.OwnerID, &sum.CreatedAt, &sum.UpdatedAt, &role, &sum.MemberCount); err != nil {
			return nil, err
		}
		sum.Role = auth.Role(role)
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ResolveRole(ctx context.Context, userID, workspaceID string) (auth.Role, error) {
	if s.db == nil {
		return "", errors.New("database connection unavailable")
	}
	var role string
	err := s.db.QueryRowContext(ctx, `
		select role from workspace_members
		where user_id = $1 and workspace_id = $2
	`, userID, workspaceID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return auth.Role(role), nil
}

func (s *Store) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	if s.db == nil {
		return "", errors.New("database connection unavailable")
	}
	var id string
	err := s.db.QueryRowContext(ctx, `select id from users where email = $1`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) AddMember(ctx context.Context, m workspace.Member) (workspace.Member, error) {
	if s.db == nil {
		return workspace.Member{}, errors.New("database connection unavailable")
	}
	var created workspace.Member
	var role string
	row := s.db.QueryRowContext(ctx, `
		insert into workspace_members (id, workspace_id, user_id, role)
		values ($1, $2, $3, $4)
		returning id, workspace_id, user_id, role, joined_at
	`, m.ID, m.WorkspaceID, m.UserID, string(m.Role))
	if err := row.Scan(&created.ID, &created.WorkspaceID, &created.UserID, &role, &created.JoinedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return workspace.Member{}, auth.ErrConflict
			case pgErrForeignKeyViolation:
				return workspace.Member{}, auth.ErrNotFound
			}
		}
		return workspace.Member{}, err
	}
	created.Role = auth.Role(role)
	return created, nil
}

func (s *Store) GetMember(ctx context.Context, workspaceID, memberID string) (workspace.Member, error) {
	if s.db == nil {
		return workspace.Member{}, errors.New("database connection unavailable")
	}
	var m workspace.Member
	var role string
	err := s.db.QueryRowContext(ctx, `
		select m.id, m.workspace_id, m.user_id, m.role, m.joined_at, u.email, u.display_name
		from workspace_members m
		join users u on u.id = m.user_id
		where m.workspace_id = $1 and m.id = $2
	`, workspaceID, memberID).Scan(&m.ID, &m.WorkspaceID, &m.UserID, &role, &m.JoinedAt, &m.Email, &m.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return workspace.Member{}, auth.ErrNotFound
	}
	if err != nil {
		return workspace.Member{}, err
	}
	m.Role = auth.Role(role)
	return m, nil
}

func (s *Store) UpdateMemberRole(ctx context.Context, workspaceID, memberID string, role auth.Role) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update workspace_members set role = $3
		where workspace_id = $1 and id = $2
	`, workspaceID, memberID, string(role))
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

func (s *Store) RemoveMember(ctx context.Context, workspaceID, memberID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		delete from workspace_members
		where workspace_id = $1 and id = $2
	`, workspaceID, memberID)
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

func (s *Store) ListMembers(ctx context.Context, workspaceID string) ([]workspace.Member, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select m.id, m.workspace_id, m.user_id, m.role, m.joined_at, u.email, u.display_name
		from workspace_members m
		join users u on u.id = m.user_id
		where m.workspace_id = $1
		order by m.joined_at asc
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []workspace.Member
	for rows.Next() {
		var m workspace.Member
		var role string
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &role, &m.JoinedAt, &m.Email, &m.DisplayName); err != nil {
			return nil, err
		}
		m.Role = auth.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
