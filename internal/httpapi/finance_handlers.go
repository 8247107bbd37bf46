package httpapi

import (
	"net/http"
	"strings"

	"budgetbook.org/internal/audit"
	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/finance"
)

// Every request body for a workspace-scoped resource may carry workspaceId;
// the access pipeline reads it before the handler decodes the rest.

type createTransactionRequest struct {
	WorkspaceID string  `json:"workspaceId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type updateTransactionRequest struct {
	WorkspaceID string `json:"workspaceId"`
	finance.TransactionUpdate
}

type createBudgetRequest struct {
	WorkspaceID string  `json:"workspaceId"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Period      string  `json:"period"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

type createGoalRequest struct {
	WorkspaceID  string  `json:"workspaceId"`
	Name         string  `json:"name"`
	TargetAmount float64 `json:"targetAmount"`
	Deadline     string  `json:"deadline"`
}

type contributeRequest struct {
	WorkspaceID string  `json:"workspaceId"`
	Amount      float64 `json:"amount"`
}

func (a *API) handleTransactionsCollection(w http.ResponseWriter, r *http.Request) {
	id, r, ok := a.resolveWorkspace(w, r, workspaceIDFromRequest(r))
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.requirePermission(w, r, id, auth.PermViewTransactions) {
			return
		}
		q := r.URL.Query()
		filter := finance.TransactionFilter{
			StartDate: strings.TrimSpace(q.Get("startDate")),
			EndDate:   strings.TrimSpace(q.Get("endDate")),
			Type:      strings.TrimSpace(q.Get("type")),
			Category:  strings.TrimSpace(q.Get("category")),
		}
		items, err := a.finance.ListTransactions(r.Context(), id.WorkspaceID, filter)
		if err != nil {
			handleServiceError(w, r, "finance.transactions.list", err)
			return
		}
		if items == nil {
			items = []finance.Transaction{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": items})
	case http.MethodPost:
		if !a.requirePermission(w, r, id, auth.PermCreateTransactions) {
			return
		}
		var req createTransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		txn, err := a.finance.CreateTransaction(r.Context(), id.WorkspaceID, id.UserID, finance.Transaction{
			Type:        req.Type,
			Amount:      req.Amount,
			Category:    req.Category,
			Description: req.Description,
			Date:        req.Date,
		})
		if err != nil {
			handleServiceError(w, r, "finance.transactions.create", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.transaction.create", map[string]any{
			"transaction_id": txn.ID,
			"type":           txn.Type,
		})
		writeJSON(w, http.StatusCreated, txn)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTransactionResource(w http.ResponseWriter, r *http.Request) {
	txnID, rest := splitResourcePath(r.URL.Path, "/transactions/")
	if txnID == "" || rest != "" {
		writeError(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	id, r, ok := a.resolveWorkspace(w, r, workspaceIDFromRequest(r))
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPatch:
		if !a.requirePermission(w, r, id, auth.PermEditTransactions) {
			return
		}
		var req updateTransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.finance.UpdateTransaction(r.Context(), id.WorkspaceID, txnID, req.TransactionUpdate); err != nil {
			handleServiceError(w, r, "finance.transactions.update", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.transaction.update", map[string]any{
			"transaction_id": txnID,
		})
		writeJSON(w, http.StatusOK, map[string]any{"id": txnID, "updated": true})
	case http.MethodDelete:
		if !a.requirePermission(w, r, id, auth.PermDeleteTransactions) {
			return
		}
		if err := a.finance.DeleteTransaction(r.Context(), id.WorkspaceID, txnID); err != nil {
			handleServiceError(w, r, "finance.transactions.delete", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.transaction.delete", map[string]any{
			"transaction_id": txnID,
		})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Transaction deleted successfully"})
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) handleBudgetsCollection(w http.ResponseWriter, r *http.Request) {
	id, r, ok := a.resolveWorkspace(w, r, workspaceIDFromRequest(r))
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.requirePermission(w, r, id, auth.PermViewReports) {
			return
		}
		items, err := a.finance.ListBudgets(r.Context(), id.WorkspaceID)
		if err != nil {
			handleServiceError(w, r, "finance.budgets.list", err)
			return
		}
		if items == nil {
			items = []finance.Budget{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"budgets": items})
	case http.MethodPost:
		if !a.requirePermission(w, r, id, auth.PermManageBudgets) {
			return
		}
		var req createBudgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		b, err := a.finance.CreateBudget(r.Context(), id.WorkspaceID, id.UserID, finance.Budget{
			Category:  req.Category,
			Amount:    req.Amount,
			Period:    req.Period,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
		if err != nil {
			handleServiceError(w, r, "finance.budgets.create", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.budget.create", map[string]any{
			"budget_id": b.ID,
			"category":  b.Category,
		})
		writeJSON(w, http.StatusCreated, b)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleBudgetResource(w http.ResponseWriter, r *http.Request) {
	budgetID, rest := splitResourcePath(r.URL.Path, "/budgets/")
	if budgetID == "" || rest != "" {
		writeError(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	id, r, ok := a.resolveWorkspace(w, r, workspaceIDFromRequest(r))
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if !a.requirePermission(w, r, id, auth.PermManageBudgets) {
		return
	}
	if err := a.finance.DeleteBudget(r.Context(), id.WorkspaceID, budgetID); err != nil {
		handleServiceError(w, r, "finance.budgets.delete", err)
		return
	}
	_ = audit.LogEvent(r.Context(), "finance.budget.delete", map[string]any{
		"budget_id": budgetID,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Budget deleted successfully"})
}

func (a *API) handleGoalsCollection(w http.ResponseWriter, r *http.Request) {
	id, r, ok := a.resolveWorkspace(w, r, workspaceIDFromRequest(r))
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.requirePermission(w, r, id, auth.PermViewReports) {
			return
		}
		items, err := a.finance.ListGoals(r.Context(), id.WorkspaceID)
		if err != nil {
			handleServiceError(w, r, "finance.goals.list", err)
			return
		}
		if items == nil {
			items = []finance.Goal{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"goals": items})
	case http.MethodPost:
		if !a.requirePermission(w, r, id, auth.PermManageGoals) {
			return
		}
		var req createGoalRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		g, err := a.finance.CreateGoal(r.Context(), id.WorkspaceID, id.UserID, finance.Goal{
			Name:         req.Name,
			TargetAmount: req.TargetAmount,
			Deadline:     req.Deadline,
		})
		if err != nil {
			handleServiceError(w, r, "finance.goals.create", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.goal.create", map[string]any{
			"goal_id": g.ID,
			"name":    g.Name,
		})
		writeJSON(w, http.StatusCreated, g)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGoalResource(w http.ResponseWriter, r *http.Request) {
	goalID, rest := splitResourcePath(r.URL.Path, "/goals/")
	if goalID == "" {
		writeError(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	id, r, ok := a.resolveWorkspace(w, r, workspaceIDFromRequest(r))
	if !ok {
		return
	}

	switch {
	case rest == "contribute":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		if !a.requirePermission(w, r, id, auth.PermManageGoals) {
			return
		}
		var req contributeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		total, err := a.finance.Contribute(r.Context(), id.WorkspaceID, goalID, req.Amount)
		if err != nil {
			handleServiceError(w, r, "finance.goals.contribute", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.goal.contribute", map[string]any{
			"goal_id": goalID,
			"amount":  req.Amount,
		})
		writeJSON(w, http.StatusOK, map[string]any{"id": goalID, "currentAmount": total})
	case rest == "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		if !a.requirePermission(w, r, id, auth.PermManageGoals) {
			return
		}
		if err := a.finance.DeleteGoal(r.Context(), id.WorkspaceID, goalID); err != nil {
			handleServiceError(w, r, "finance.goals.delete", err)
			return
		}
		_ = audit.LogEvent(r.Context(), "finance.goal.delete", map[string]any{
			"goal_id": goalID,
		})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Goal deleted successfully"})
	default:
		writeError(w, r, http.StatusNotFound, "Resource not found")
	}
}

// splitResourcePath peels "/prefix/{id}[/rest]" into id and the remainder.
func splitResourcePath(path, prefix string) (id, rest string) {
	p := strings.TrimPrefix(path, prefix)
	p = strings.Trim(p, "/")
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		rest = parts[1]
	}
	return id, rest
}
