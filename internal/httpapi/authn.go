package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/auth/register",
	"/auth/login",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

// withAuth authenticates the bearer token and stores the partial identity
// (user id, email) in the context. Workspace resolution happens per route.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			obs.CountAuthFailure("token")
			writeError(w, r, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := a.auth.Tokens().Verify(token)
		if err != nil {
			obs.CountAuthFailure("token")
			writeError(w, r, http.StatusForbidden, "Invalid or expired token")
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{
			UserID: claims.Subject,
			Email:  claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveWorkspace runs the remaining access-pipeline stages for a
// workspace-scoped route: the workspace id must be present and the caller must
// hold a membership there. On success the full identity is returned and also
// re-attached to the request context.
func (a *API) resolveWorkspace(w http.ResponseWriter, r *http.Request, workspaceID string) (auth.Identity, *http.Request, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Access token required")
		return auth.Identity{}, r, false
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		obs.CountAuthFailure("workspace")
		writeError(w, r, http.StatusBadRequest, "Workspace ID required")
		return auth.Identity{}, r, false
	}

	role, err := a.workspaces.ResolveRole(r.Context(), id.UserID, workspaceID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			obs.CountAuthFailure("membership")
			writeError(w, r, http.StatusForbidden, "Access denied to this workspace")
			return auth.Identity{}, r, false
		}
		handleServiceError(w, r, "access.resolve_role", err)
		return auth.Identity{}, r, false
	}

	id.WorkspaceID = workspaceID
	id.Role = role
	r = r.WithContext(auth.ContextWithIdentity(r.Context(), id))
	return id, r, true
}

// requirePermission gates a handler on the resolved role holding the
// permission. The 403 names the missing permission and the caller's role.
func (a *API) requirePermission(w http.ResponseWriter, r *http.Request, id auth.Identity, perm auth.Permission) bool {
	if auth.RoleHasPermission(id.Role, perm) {
		return true
	}
	obs.CountAuthFailure("permission")
	payload := map[string]any{
		"error":    "Insufficient permissions",
		"required": string(perm),
		"role":     string(id.Role),
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, http.StatusForbidden, payload)
	return false
}

// workspaceIDFromRequest resolves the workspace id from the workspaceId query
// parameter, falling back to a workspaceId member of a JSON body. The body is
// buffered and restored so handlers can decode it again.
func workspaceIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get("workspaceId")); id != "" {
		return id
	}
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodDelete {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	var probe struct {
		WorkspaceID string `json:"workspaceId"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.WorkspaceID)
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, bearer) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
