package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/obs"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// fieldError is one entry of a validation failure batch.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeValidationErrors(w http.ResponseWriter, r *http.Request, errs []fieldError) {
	payload := map[string]any{
		"error":  "validation failed",
		"errors": errs,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, http.StatusBadRequest, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleServiceError translates service sentinels into HTTP responses. The
// fallback is an opaque 500 with the operation name logged server-side.
func handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, trimSentinel(err, auth.ErrInvalidInput))
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, trimSentinel(err, auth.ErrForbidden))
	case errors.Is(err, auth.ErrConflict):
		msg := trimSentinel(err, auth.ErrConflict)
		if msg == auth.ErrConflict.Error() {
			msg = "Resource already exists"
		}
		writeError(w, r, http.StatusConflict, msg)
	case errors.Is(err, auth.ErrNotFound):
		msg := trimSentinel(err, auth.ErrNotFound)
		if msg == auth.ErrNotFound.Error() {
			msg = "Resource not found"
		}
		writeError(w, r, http.StatusNotFound, msg)
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "Invalid email or password")
	default:
		obs.LogError(op, err, map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// trimSentinel strips the sentinel prefix ("auth: invalid input: ") so the
// client sees only the human part of the message.
func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}
