package httpapi

import (
	"net/http"
	"strings"

	"budgetbook.org/internal/audit"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Batch field validation before touching the service.
	var errs []fieldError
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, fieldError{Field: "email", Message: "valid email is required"})
	}
	if len(req.Password) < 8 {
		errs = append(errs, fieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		errs = append(errs, fieldError{Field: "displayName", Message: "display name is required"})
	}
	if len(errs) > 0 {
		writeValidationErrors(w, r, errs)
		return
	}

	session, err := a.auth.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		handleServiceError(w, r, "auth.register", err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id":      session.User.ID,
		"workspace_id": session.User.DefaultWorkspace,
	})
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, "auth.login", err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": session.User.ID,
	})
	writeJSON(w, http.StatusOK, session)
}
