package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/ids"
)

// Service implements workspace creation and the membership registry. Owner
// memberships are immutable: update and removal both refuse them.
type Service struct {
	store Store
}

// NewService constructs the registry over a Store.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("workspace store is required")
	}
	return &Service{store: store}, nil
}

// Create makes a workspace with the caller as owner; workspace row and owner
// membership are written atomically by the store.
func (s *Service) Create(ctx context.Context, ownerID, name string) (Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Workspace{}, fmt.Errorf("%w: workspace name is required", auth.ErrInvalidInput)
	}
	ws := Workspace{
		ID:      ids.New(ids.PrefixWorkspace),
		Name:    name,
		OwnerID: ownerID,
	}
	return s.store.CreateWorkspace(ctx, ws, ids.New(ids.PrefixMember))
}

// ListForUser returns the caller's workspaces with role and member count.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Summary, error) {
	return s.store.ListForUser(ctx, userID)
}

// ResolveRole answers "does user U have a role in workspace W". Absence of a
// membership row is auth.ErrNotFound, never a zero role.
func (s *Service) ResolveRole(ctx context.Context, userID, workspaceID string) (auth.Role, error) {
	if userID == "" || workspaceID == "" {
		return "", fmt.Errorf("%w: user and workspace ids are required", auth.ErrInvalidInput)
	}
	return s.store.ResolveRole(ctx, userID, workspaceID)
}

// AddMember invites an existing account by email. Invitation requires a
// pre-existing user; unknown emails surface auth.ErrNotFound.
func (s *Service) AddMember(ctx context.Context, workspaceID, email string, role auth.Role) (Member, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return Member{}, fmt.Errorf("%w: email is required", auth.ErrInvalidInput)
	}
	if role == auth.RoleOwner {
		return Member{}, fmt.Errorf("%w: role owner cannot be assigned", auth.ErrInvalidInput)
	}
	userID, err := s.store.FindUserIDByEmail(ctx, email)
	if err != nil {
		return Member{}, err
	}
	member := Member{
		ID:          ids.New(ids.PrefixMember),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	return s.store.AddMember(ctx, member)
}

// UpdateRole changes a member's role. Owner rows are protected for any
// caller.
func (s *Service) UpdateRole(ctx context.Context, workspaceID, memberID string, role auth.Role) error {
	if role == auth.RoleOwner {
		return fmt.Errorf("%w: role owner cannot be assigned", auth.ErrInvalidInput)
	}
	current, err := s.store.GetMember(ctx, workspaceID, memberID)
	if err != nil {
		return err
	}
	if current.Role == auth.RoleOwner {
		return fmt.Errorf("%w: Cannot change owner role", auth.ErrForbidden)
	}
	return s.store.UpdateMemberRole(ctx, workspaceID, memberID, role)
}

// RemoveMember deletes a membership row, with the same owner protection as
// UpdateRole.
func (s *Service) RemoveMember(ctx context.Context, workspaceID, memberID string) error {
	current, err := s.store.GetMember(ctx, workspaceID, memberID)
	if err != nil {
		return err
	}
	if current.Role == auth.RoleOwner {
		return fmt.Errorf("%w: Cannot remove workspace owner", auth.ErrForbidden)
	}
	return s.store.RemoveMember(ctx, workspaceID, memberID)
}

// ListMembers returns the membership roster ordered by join time ascending.
func (s *Service) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	return s.store.ListMembers(ctx, workspaceID)
}
