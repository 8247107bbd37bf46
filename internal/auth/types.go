package auth

import "time"

// User is an account holder. Identity is immutable after registration; email
// uniqueness is enforced by the store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the public shape returned by register and login.
type UserSummary struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	DefaultWorkspace string `json:"defaultWorkspace,omitempty"`
}

// Session bundles a freshly issued token with the user summary.
type Session struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
