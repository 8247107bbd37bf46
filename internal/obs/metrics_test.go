package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/workspaces":                  "/workspaces",
		"/workspaces/ws_abc":           "/workspaces/:id",
		"/workspaces/ws_abc/members":   "/workspaces/:id/members",
		"/workspaces/ws_a/members/m_b": "/workspaces/:id/members/:memberId",
		"/transactions":                "/transactions",
		"/transactions/txn_123":        "/transactions/:id",
		"/transactions?type=expense":   "/transactions",
		"/budgets/bud_1":               "/budgets/:id",
		"/goals/goal_1/contribute":     "/goals/:id/contribute",
		"/goals/goal_1/other":          "/goals/goal_1/other",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
