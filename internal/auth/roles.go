package auth

import (
	"fmt"
	"strings"
)

// Role is a user's standing within one workspace. A user holds exactly one
// role per workspace; the owner role is fixed at workspace creation.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// AssignableRoles are the roles a member can be invited with or moved to.
// Ownership is only ever established by creating a workspace.
var AssignableRoles = []Role{RoleAdmin, RoleEditor, RoleViewer}

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer:
		return RoleViewer, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// ParseAssignableRole is ParseRole restricted to roles membership mutations
// may set.
func ParseAssignableRole(raw string) (Role, error) {
	role, err := ParseRole(raw)
	if err != nil {
		return "", err
	}
	if role == RoleOwner {
		return "", fmt.Errorf("%w: role owner cannot be assigned", ErrInvalidInput)
	}
	return role, nil
}
