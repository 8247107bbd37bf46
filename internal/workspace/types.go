package workspace

import (
	"time"

	"budgetbook.org/internal/auth"
)

// Workspace is a shared budgeting space. Exactly one member holds the owner
// role, established at creation and never removable.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is a workspace joined with the caller's own role and the member
// count, as returned by the workspace listing.
type Summary struct {
	Workspace
	Role        auth.Role `json:"role"`
	MemberCount int       `json:"member_count"`
}

// Member links a user to a workspace with exactly one role. The
// (workspace, user) pair is unique.
type Member struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        auth.Role `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`

	// Joined user fields for member listings.
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}
