package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/finance"
	"budgetbook.org/internal/store/memory"
	"budgetbook.org/internal/workspace"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	store := memory.New()
	tokens := auth.NewTokenManager("test-secret", "budgetbook-test", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	authSvc, err := auth.NewService(store, tokens, hasher)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	wsSvc, err := workspace.NewService(store)
	if err != nil {
		t.Fatalf("workspace service: %v", err)
	}
	finSvc, err := finance.NewService(store)
	if err != nil {
		t.Fatalf("finance service: %v", err)
	}

	api := New(authSvc, wsSvc, finSvc, ReadyProbe{}, Options{
		Version:    "test",
		RateBurst:  1000,
		RatePerSec: 1000,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u := path
	if params != nil {
		u += "?" + params.Encode()
	}
	return c.do(http.MethodGet, u, nil, headers)
}

// register creates an account and returns the bearer header plus the default
// workspace id.
func (c *apiClient) register(email, name string) (map[string]string, string) {
	c.t.Helper()
	resp := c.post("/auth/register", map[string]any{
		"email":       email,
		"password":    "password123",
		"displayName": name,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("unexpected register status: %d", resp.StatusCode)
	}
	session := decode[map[string]any](c.t, resp)
	token, _ := session["token"].(string)
	if token == "" {
		c.t.Fatalf("empty token issued")
	}
	user := session["user"].(map[string]any)
	wsID, _ := user["defaultWorkspace"].(string)
	if wsID == "" {
		c.t.Fatalf("missing default workspace")
	}
	return map[string]string{"Authorization": "Bearer " + token}, wsID
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestRegisterAndTransactionRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/transactions?workspaceId="+wsID, map[string]any{
		"type":     "expense",
		"amount":   42.50,
		"category": "Food & Dining",
		"date":     "2024-01-01",
	}, authHeader)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	if created["id"] == "" {
		t.Fatalf("expected server-assigned id")
	}
	if created["amount"].(float64) != 42.50 {
		t.Fatalf("unexpected amount: %v", created["amount"])
	}

	resp = api.get("/transactions", url.Values{"workspaceId": []string{wsID}}, authHeader)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	items := payload["transactions"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(items))
	}
	txn := items[0].(map[string]any)
	if txn["type"] != "expense" || txn["category"] != "Food & Dining" || txn["date"] != "2024-01-01" {
		t.Fatalf("round-trip mismatch: %v", txn)
	}
}

func TestLoginReturnsOwnedWorkspace(t *testing.T) {
	api := newTestAPI(t)
	_, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "password123",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	session := decode[map[string]any](t, resp)
	user := session["user"].(map[string]any)
	if user["defaultWorkspace"] != wsID {
		t.Fatalf("expected default workspace %s, got %v", wsID, user["defaultWorkspace"])
	}
}

func TestRegisterValidationBatch(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/auth/register", map[string]any{
		"email":       "not-an-email",
		"password":    "short",
		"displayName": " ",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	errs, ok := payload["errors"].([]any)
	if !ok || len(errs) != 3 {
		t.Fatalf("expected three field errors, got %v", payload["errors"])
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	api := newTestAPI(t)
	api.register("a@x.com", "Alice")

	resp := api.post("/auth/register", map[string]any{
		"email":       "a@x.com",
		"password":    "password123",
		"displayName": "Alice Again",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestInviteUnregisteredEmailIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/workspaces/"+wsID+"/members", map[string]any{
		"email": "b@x.com",
		"role":  "editor",
	}, authHeader)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["error"] != "User not found" {
		t.Fatalf("unexpected error message: %v", payload["error"])
	}
}

func TestOwnerMembershipIsProtected(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.get("/workspaces/"+wsID+"/members", nil, authHeader)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected members status: %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	members := payload["members"].([]any)
	if len(members) != 1 {
		t.Fatalf("expected exactly one member, got %d", len(members))
	}
	owner := members[0].(map[string]any)
	if owner["role"] != "owner" {
		t.Fatalf("expected owner role, got %v", owner["role"])
	}
	memberID := owner["id"].(string)

	resp = api.do(http.MethodPatch, "/workspaces/"+wsID+"/members/"+memberID, map[string]any{
		"role": "viewer",
	}, authHeader)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 changing owner role, got %d", resp.StatusCode)
	}
	payload = decode[map[string]any](t, resp)
	if payload["error"] != "Cannot change owner role" {
		t.Fatalf("unexpected error message: %v", payload["error"])
	}

	resp = api.do(http.MethodDelete, "/workspaces/"+wsID+"/members/"+memberID, nil, authHeader)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 removing owner, got %d", resp.StatusCode)
	}
	payload = decode[map[string]any](t, resp)
	if payload["error"] != "Cannot remove workspace owner" {
		t.Fatalf("unexpected error message: %v", payload["error"])
	}

	// The owner row is untouched.
	resp = api.get("/workspaces/"+wsID+"/members", nil, authHeader)
	payload = decode[map[string]any](t, resp)
	if len(payload["members"].([]any)) != 1 {
		t.Fatalf("owner membership was mutated")
	}
}

func TestViewerCannotCreateTransactions(t *testing.T) {
	api := newTestAPI(t)
	ownerHeader, wsID := api.register("a@x.com", "Alice")
	viewerHeader, _ := api.register("b@x.com", "Bob")

	resp := api.post("/workspaces/"+wsID+"/members", map[string]any{
		"email": "b@x.com",
		"role":  "viewer",
	}, ownerHeader)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected invite status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.post("/transactions?workspaceId="+wsID, map[string]any{
		"type":     "expense",
		"amount":   5.0,
		"category": "Coffee",
		"date":     "2024-01-02",
	}, viewerHeader)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["required"] != "create_transactions" {
		t.Fatalf("expected required permission in body, got %v", payload)
	}
	if payload["role"] != "viewer" {
		t.Fatalf("expected caller role in body, got %v", payload)
	}
}

func TestGoalContributionFlow(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/goals", map[string]any{
		"workspaceId":  wsID,
		"name":         "Vacation",
		"targetAmount": 2000.0,
		"deadline":     "2024-12-31",
	}, authHeader)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected goal status: %d", resp.StatusCode)
	}
	goal := decode[map[string]any](t, resp)
	if goal["currentAmount"].(float64) != 0 {
		t.Fatalf("expected zero starting total: %v", goal["currentAmount"])
	}
	goalID := goal["id"].(string)

	resp = api.post("/goals/"+goalID+"/contribute", map[string]any{
		"workspaceId": wsID,
		"amount":      150.0,
	}, authHeader)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected contribute status: %d", resp.StatusCode)
	}
	result := decode[map[string]any](t, resp)
	if result["currentAmount"].(float64) != 150.0 {
		t.Fatalf("unexpected total: %v", result["currentAmount"])
	}
}

func TestBudgetSpentReflectsExpenses(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/budgets", map[string]any{
		"workspaceId": wsID,
		"category":    "Food",
		"amount":      500.0,
		"period":      "monthly",
		"startDate":   "2024-01-01",
		"endDate":     "2024-01-31",
	}, authHeader)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected budget status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.post("/transactions?workspaceId="+wsID, map[string]any{
		"type":     "expense",
		"amount":   75.0,
		"category": "Food",
		"date":     "2024-01-10",
	}, authHeader)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected transaction status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/budgets", url.Values{"workspaceId": []string{wsID}}, authHeader)
	payload := decode[map[string]any](t, resp)
	budgets := payload["budgets"].([]any)
	if len(budgets) != 1 {
		t.Fatalf("expected one budget, got %d", len(budgets))
	}
	if budgets[0].(map[string]any)["spent"].(float64) != 75.0 {
		t.Fatalf("unexpected spent: %v", budgets[0])
	}
}

func TestDeleteEndpointsConfirmWithMessage(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/transactions?workspaceId="+wsID, map[string]any{
		"type":     "expense",
		"amount":   10.0,
		"category": "Misc",
		"date":     "2024-01-01",
	}, authHeader)
	txnID := decode[map[string]any](t, resp)["id"].(string)

	resp = api.post("/budgets", map[string]any{
		"workspaceId": wsID,
		"category":    "Misc",
		"amount":      100.0,
		"period":      "monthly",
		"startDate":   "2024-01-01",
		"endDate":     "2024-01-31",
	}, authHeader)
	budgetID := decode[map[string]any](t, resp)["id"].(string)

	resp = api.post("/goals", map[string]any{
		"workspaceId":  wsID,
		"name":         "Buffer",
		"targetAmount": 300.0,
		"deadline":     "2024-06-30",
	}, authHeader)
	goalID := decode[map[string]any](t, resp)["id"].(string)

	cases := []struct {
		name, path, message string
	}{
		{"transaction", "/transactions/" + txnID, "Transaction deleted successfully"},
		{"budget", "/budgets/" + budgetID, "Budget deleted successfully"},
		{"goal", "/goals/" + goalID, "Goal deleted successfully"},
	}
	for _, tc := range cases {
		resp = api.do(http.MethodDelete, tc.path+"?workspaceId="+wsID, nil, authHeader)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.name, resp.StatusCode)
		}
		payload := decode[map[string]any](t, resp)
		if payload["message"] != tc.message {
			t.Fatalf("%s: unexpected message: %v", tc.name, payload["message"])
		}
	}
}

func TestRemoveMemberConfirmsWithMessage(t *testing.T) {
	api := newTestAPI(t)
	ownerHeader, wsID := api.register("a@x.com", "Alice")
	api.register("b@x.com", "Bob")

	resp := api.post("/workspaces/"+wsID+"/members", map[string]any{
		"email": "b@x.com",
		"role":  "viewer",
	}, ownerHeader)
	memberID := decode[map[string]any](t, resp)["id"].(string)

	resp = api.do(http.MethodDelete, "/workspaces/"+wsID+"/members/"+memberID, nil, ownerHeader)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["message"] != "Member removed successfully" {
		t.Fatalf("unexpected message: %v", payload["message"])
	}

	resp = api.get("/workspaces/"+wsID+"/members", nil, ownerHeader)
	payload = decode[map[string]any](t, resp)
	if len(payload["members"].([]any)) != 1 {
		t.Fatalf("expected only the owner to remain")
	}
}

func TestEmptyTransactionUpdateRejected(t *testing.T) {
	api := newTestAPI(t)
	authHeader, wsID := api.register("a@x.com", "Alice")

	resp := api.post("/transactions?workspaceId="+wsID, map[string]any{
		"type":     "income",
		"amount":   100.0,
		"category": "Salary",
		"date":     "2024-01-01",
	}, authHeader)
	created := decode[map[string]any](t, resp)
	txnID := created["id"].(string)

	resp = api.do(http.MethodPatch, "/transactions/"+txnID+"?workspaceId="+wsID, map[string]any{}, authHeader)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["error"] != "No valid fields to update" {
		t.Fatalf("unexpected error: %v", payload["error"])
	}
}
