package httpapi

import (
	"net/http"
	"net/url"
	"testing"
)

// The access pipeline rejects in a fixed order: token presence, token
// validity, workspace id presence, membership.
func TestAccessPipelineLadder(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	// No token at all.
	resp := api.get("/transactions", url.Values{"workspaceId": []string{wsID}}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["error"] != "Access token required" {
		t.Fatalf("unexpected error: %v", payload["error"])
	}

	// Garbage token.
	resp = api.get("/transactions", url.Values{"workspaceId": []string{wsID}},
		map[string]string{"Authorization": "Bearer not-a-token"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	payload = decode[map[string]any](t, resp)
	if payload["error"] != "Invalid or expired token" {
		t.Fatalf("unexpected error: %v", payload["error"])
	}

	// Valid token, no workspace id anywhere.
	resp = api.get("/transactions", nil, authHeader)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	payload = decode[map[string]any](t, resp)
	if payload["error"] != "Workspace ID required" {
		t.Fatalf("unexpected error: %v", payload["error"])
	}

	// Valid token, workspace the caller has no standing in.
	resp = api.get("/transactions", url.Values{"workspaceId": []string{"ws_other"}}, authHeader)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	payload = decode[map[string]any](t, resp)
	if payload["error"] != "Access denied to this workspace" {
		t.Fatalf("unexpected error: %v", payload["error"])
	}

	// Full standing.
	resp = api.get("/transactions", url.Values{"workspaceId": []string{wsID}}, authHeader)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWorkspaceIDResolvedFromBody(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	// No query parameter; the id travels in the JSON body.
	resp := api.post("/transactions", map[string]any{
		"workspaceId": wsID,
		"type":        "income",
		"amount":      10.0,
		"category":    "Salary",
		"date":        "2024-02-01",
	}, authHeader)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := extractBearerToken(tc.header)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("header %q: got (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}
