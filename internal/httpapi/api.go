// Package httpapi is the HTTP surface: routing, the access pipeline and the
// JSON handlers over the auth, workspace and finance services.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/finance"
	"budgetbook.org/internal/obs"
	"budgetbook.org/internal/workspace"
)

// ReadyProbe checks downstream readiness (DB ping when configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options tune the outer middleware chain.
type Options struct {
	Version    string
	RateBurst  int
	RatePerSec int
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	workspaces *workspace.Service
	finance    *finance.Service
	readyProbe ReadyProbe
	opts       Options
}

func New(authSvc *auth.Service, wsSvc *workspace.Service, finSvc *finance.Service, rp ReadyProbe, opts Options) *API {
	if opts.RateBurst <= 0 {
		opts.RateBurst = 50
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 25
	}
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		workspaces: wsSvc,
		finance:    finSvc,
		readyProbe: rp,
		opts:       opts,
	}

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// session endpoints, no token required
	a.mux.HandleFunc("/auth/register", a.handleRegister)
	a.mux.HandleFunc("/auth/login", a.handleLogin)

	// workspaces and the membership registry
	a.mux.HandleFunc("/workspaces", a.handleWorkspacesCollection)
	a.mux.HandleFunc("/workspaces/", a.handleWorkspaceScoped)

	// workspace-scoped resources
	a.mux.HandleFunc("/transactions", a.handleTransactionsCollection)
	a.mux.HandleFunc("/transactions/", a.handleTransactionResource)
	a.mux.HandleFunc("/budgets", a.handleBudgetsCollection)
	a.mux.HandleFunc("/budgets/", a.handleBudgetResource)
	a.mux.HandleFunc("/goals", a.handleGoalsCollection)
	a.mux.HandleFunc("/goals/", a.handleGoalResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = obs.Instrument(a.withAuth(a.mux))
	h = Logging(h)
	h = RateLimit(h, a.opts.RateBurst, a.opts.RatePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "budgetbook-api",
		"version": a.opts.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
