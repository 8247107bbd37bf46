package workspace

import (
	"context"

	"budgetbook.org/internal/auth"
)

// Store describes persistence for workspaces and the membership registry.
type Store interface {
	// CreateWorkspace inserts the workspace and the owner membership in one
	// transaction.
	CreateWorkspace(ctx context.Context, ws Workspace, ownerMemberID string) (Workspace, error)

	// ListForUser returns the workspaces the user belongs to, newest first,
	// each with the user's role and the member count.
	ListForUser(ctx context.Context, userID string) ([]Summary, error)

	// ResolveRole is the single-row membership lookup the access middleware
	// runs per request. Absence means auth.ErrNotFound.
	ResolveRole(ctx context.Context, userID, workspaceID string) (auth.Role, error)

	// FindUserIDByEmail supports invitations; auth.ErrNotFound for unknown
	// addresses.
	FindUserIDByEmail(ctx context.Context, email string) (string, error)

	// AddMember returns auth.ErrConflict when the (workspace, user) pair
	// already exists.
	AddMember(ctx context.Context, m Member) (Member, error)

	// GetMember looks a membership row up by id within a workspace.
	GetMember(ctx context.Context, workspaceID, memberID string) (Member, error)

	UpdateMemberRole(ctx context.Context, workspaceID, memberID string, role auth.Role) error
	RemoveMember(ctx context.Context, workspaceID, memberID string) error

	// ListMembers orders by join time ascending and joins user email and
	// display name.
	ListMembers(ctx context.Context, workspaceID string) ([]Member, error)
}
