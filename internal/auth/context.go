package auth

import "context"

// Identity is the per-request context attached once the access pipeline has
// authenticated the token and resolved the caller's workspace role.
type Identity struct {
	UserID      string
	Email       string
	WorkspaceID string
	Role        Role
}

type identityContextKey struct{}

// ContextWithIdentity attaches the resolved identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the resolved identity, if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || v.UserID == "" {
		return Identity{}, false
	}
	return v, true
}

// UserIDFromContext returns just the authenticated user id. Used by the audit
// log, which should not depend on a workspace having been resolved.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", false
	}
	return id.UserID, true
}
