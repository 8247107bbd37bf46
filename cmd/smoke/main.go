// Command smoke drives a running budgetbook-api through the full happy path:
// register, login, create a transaction, list it back.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

func main() {
	base := os.Getenv("BUDGETBOOK_SMOKE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 5 * time.Second}

	email := fmt.Sprintf("smoke-%d@example.com", rand.Int())

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID               string `json:"id"`
			DefaultWorkspace string `json:"defaultWorkspace"`
		} `json:"user"`
	}
	postJSON(client, base+"/auth/register", map[string]any{
		"email":       email,
		"password":    "password123",
		"displayName": "Smoke Tester",
	}, "", http.StatusCreated, &session)
	if session.Token == "" || session.User.DefaultWorkspace == "" {
		log.Fatalf("register returned incomplete session: %+v", session)
	}
	wsID := session.User.DefaultWorkspace

	postJSON(client, base+"/auth/login", map[string]any{
		"email":    email,
		"password": "password123",
	}, "", http.StatusOK, &session)

	var txn struct {
		ID     string  `json:"id"`
		Amount float64 `json:"amount"`
	}
	postJSON(client, base+"/transactions?workspaceId="+wsID, map[string]any{
		"type":     "expense",
		"amount":   42.50,
		"category": "Food & Dining",
		"date":     "2024-01-01",
	}, session.Token, http.StatusCreated, &txn)

	var listing struct {
		Transactions []struct {
			ID     string  `json:"id"`
			Amount float64 `json:"amount"`
		} `json:"transactions"`
	}
	getJSON(client, base+"/transactions?workspaceId="+wsID, session.Token, &listing)
	if len(listing.Transactions) != 1 || listing.Transactions[0].ID != txn.ID {
		log.Fatalf("listing mismatch: created %s, got %+v", txn.ID, listing.Transactions)
	}
	if listing.Transactions[0].Amount != 42.50 {
		log.Fatalf("amount mismatch: %v", listing.Transactions[0].Amount)
	}

	fmt.Printf("✅ budgetbook smoke test passed: user=%s workspace=%s\n", session.User.ID, wsID)
}

func postJSON(client *http.Client, url string, body map[string]any, token string, wantStatus int, out any) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("marshal %s: %v", url, err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("request %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("post %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s: %v", url, err)
		}
	}
}

func getJSON(client *http.Client, url, token string, out any) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		log.Fatalf("request %s: %v", url, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Fatalf("decode %s: %v", url, err)
	}
}
