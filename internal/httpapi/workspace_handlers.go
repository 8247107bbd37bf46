package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"budgetbook.org/internal/audit"
	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/workspace"
)

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type updateMemberRequest struct {
	Role string `json:"role"`
}

func (a *API) handleWorkspacesCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Access token required")
		return
	}
	switch r.Method {
	case http.MethodGet:
		summaries, err := a.workspaces.ListForUser(r.Context(), id.UserID)
		if err != nil {
			handleServiceError(w, r, "workspace.list", err)
			return
		}
		if summaries == nil {
			summaries = []workspace.Summary{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"workspaces": summaries})
	case http.MethodPost:
		var req createWorkspaceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		ws, err := a.workspaces.Create(r.Context(), id.UserID, req.Name)
		if err != nil {
			handleServiceError(w, r, "workspace.create", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "workspace.create", map[string]any{
			"workspace_id": ws.ID,
			"name":         ws.Name,
		})
		w.Header().Set("Location", "/workspaces/"+ws.ID)
		writeJSON(w, http.StatusCreated, ws)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWorkspaceScoped routes /workspaces/{id}/members[/{memberId}].
func (a *API) handleWorkspaceScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/workspaces/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[1] != "members" {
		writeError(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	workspaceID := parts[0]

	id, r, ok := a.resolveWorkspace(w, r, workspaceID)
	if !ok {
		return
	}

	switch len(parts) {
	case 2:
		a.handleMembersCollection(w, r, id)
	case 3:
		a.handleMemberResource(w, r, id, parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "Resource not found")
	}
}

func (a *API) handleMembersCollection(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	switch r.Method {
	case http.MethodGet:
		members, err := a.workspaces.ListMembers(r.Context(), id.WorkspaceID)
		if err != nil {
			handleServiceError(w, r, "workspace.members.list", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	case http.MethodPost:
		if !a.requirePermission(w, r, id, auth.PermManageMembers) {
			return
		}
		var req addMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, err := auth.ParseAssignableRole(req.Role)
		if err != nil {
			handleServiceError(w, r, "workspace.members.add", err)
			return
		}
		member, err := a.workspaces.AddMember(r.Context(), id.WorkspaceID, req.Email, role)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, "User not found")
				return
			}
			handleServiceError(w, r, "workspace.members.add", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "workspace.member.add", map[string]any{
			"member_id": member.ID,
			"role":      string(member.Role),
		})
		writeJSON(w, http.StatusCreated, member)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleMemberResource(w http.ResponseWriter, r *http.Request, id auth.Identity, memberID string) {
	switch r.Method {
	case http.MethodPatch:
		if !a.requirePermission(w, r, id, auth.PermManageMembers) {
			return
		}
		var req updateMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, err := auth.ParseAssignableRole(req.Role)
		if err != nil {
			handleServiceError(w, r, "workspace.members.update", err)
			return
		}
		if err := a.workspaces.UpdateRole(r.Context(), id.WorkspaceID, memberID, role); err != nil {
			handleServiceError(w, r, "workspace.members.update", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "workspace.member.update_role", map[string]any{
			"member_id": memberID,
			"role":      string(role),
		})
		writeJSON(w, http.StatusOK, map[string]any{"id": memberID, "role": role})
	case http.MethodDelete:
		if !a.requirePermission(w, r, id, auth.PermManageMembers) {
			return
		}
		if err := a.workspaces.RemoveMember(r.Context(), id.WorkspaceID, memberID); err != nil {
			handleServiceError(w, r, "workspace.members.remove", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "workspace.member.remove", map[string]any{
			"member_id": memberID,
		})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Member removed successfully"})
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}
