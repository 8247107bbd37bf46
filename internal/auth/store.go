package auth

import "context"

// Registration carries the rows created atomically when an account is opened:
// the user, their default workspace, and the owner membership. Either all
// three persist or none do.
type Registration struct {
	UserID        string
	Email         string
	PasswordHash  string
	DisplayName   string
	WorkspaceID   string
	WorkspaceName string
	MemberID      string
}

// Store describes the persistence the credential subsystem needs.
type Store interface {
	// Register inserts user + default workspace + owner membership in one
	// transaction. Returns ErrConflict when the email is already taken.
	Register(ctx context.Context, reg Registration) (User, error)

	// FindUserByEmail returns ErrNotFound for unknown addresses.
	FindUserByEmail(ctx context.Context, email string) (User, error)

	// OwnedWorkspaceID resolves the workspace the user owns a membership in.
	// Returns ErrNotFound when none exists; callers treat that as an account
	// without a default workspace.
	OwnedWorkspaceID(ctx context.Context, userID string) (string, error)
}
