// Package memory implements all persistence interfaces in process. It backs
// the HTTP tests and the smoke binary's local mode.
// NOTE: Not durable; production deployments use the pg store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/finance"
	"budgetbook.org/internal/workspace"
)

type Store struct {
	mu           sync.RWMutex
	users        map[string]auth.User        // by id
	usersByEmail map[string]string           // email -> id
	workspaces   map[string]workspace.Workspace
	members      map[string]workspace.Member // by member id
	transactions map[string]finance.Transaction
	budgets      map[string]finance.Budget
	goals        map[string]finance.Goal
}

var (
	_ auth.Store      = (*Store)(nil)
	_ workspace.Store = (*Store)(nil)
	_ finance.Store   = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:        make(map[string]auth.User),
		usersByEmail: make(map[string]string),
		workspaces:   make(map[string]workspace.Workspace),
		members:      make(map[string]workspace.Member),
		transactions: make(map[string]finance.Transaction),
		budgets:      make(map[string]finance.Budget),
		goals:        make(map[string]finance.Goal),
	}
}

// --- auth.Store ---

func (s *Store) Register(ctx context.Context, reg auth.Registration) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByEmail[reg.Email]; taken {
		return auth.User{}, auth.ErrConflict
	}
	now := time.Now().UTC()
	user := auth.User{
		ID:           reg.UserID,
		Email:        reg.Email,
		PasswordHash: reg.PasswordHash,
		DisplayName:  reg.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user
	s.usersByEmail[user.Email] = user.ID
	s.workspaces[reg.WorkspaceID] = workspace.Workspace{
		ID:        reg.WorkspaceID,
		Name:      reg.WorkspaceName,
		OwnerID:   reg.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.members[reg.MemberID] = workspace.Member{
		ID:          reg.MemberID,
		WorkspaceID: reg.WorkspaceID,
		UserID:      reg.UserID,
		Role:        auth.RoleOwner,
		JoinedAt:    now,
	}
	return user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) OwnedWorkspaceID(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []workspace.Member
	for _, m := range s.members {
		if m.UserID == userID && m.Role == auth.RoleOwner {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return "", auth.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].JoinedAt.Before(candidates[j].JoinedAt) })
	return candidates[0].WorkspaceID, nil
}

// --- workspace.Store ---

func (s *Store) CreateWorkspace(ctx context.Context, ws workspace.Workspace, ownerMemberID string) (workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[ws.OwnerID]; !ok {
		return workspace.Workspace{}, auth.ErrNotFound
	}
	now := time.Now().UTC()
	ws.CreatedAt = now
	ws.UpdatedAt = now
	s.workspaces[ws.ID] = ws
	s.members[ownerMemberID] = workspace.Member{
		ID:          ownerMemberID,
		WorkspaceID: ws.ID,
		UserID:      ws.OwnerID,
		Role:        auth.RoleOwner,
		JoinedAt:    now,
	}
	return ws, nil
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]workspace.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, m := range s.members {
		counts[m.WorkspaceID]++
	}

	var result []workspace.Summary
	for _, m := range s.members {
		if m.UserID != userID {
			continue
		}
		ws, ok := s.workspaces[m.WorkspaceID]
		if !ok {
			continue
		}
		result = append(result, workspace.Summary{
			Workspace:   ws,
			Role:        m.Role,
			MemberCount: counts[ws.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) ResolveRole(ctx context.Context, userID, workspaceID string) (auth.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.UserID == userID && m.WorkspaceID == workspaceID {
			return m.Role, nil
		}
	}
	return "", auth.ErrNotFound
}

func (s *Store) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return "", auth.ErrNotFound
	}
	return id, nil
}

func (s *Store) AddMember(ctx context.Context, m workspace.Member) (workspace.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[m.WorkspaceID]; !ok {
		return workspace.Member{}, auth.ErrNotFound
	}
	if _, ok := s.users[m.UserID]; !ok {
		return workspace.Member{}, auth.ErrNotFound
	}
	for _, existing := range s.members {
		if existing.WorkspaceID == m.WorkspaceID && existing.UserID == m.UserID {
			return workspace.Member{}, auth.ErrConflict
		}
	}
	m.JoinedAt = time.Now().UTC()
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) GetMember(ctx context.Context, workspaceID, memberID string) (workspace.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok || m.WorkspaceID != workspaceID {
		return workspace.Member{}, auth.ErrNotFound
	}
	if u, ok := s.users[m.UserID]; ok {
		m.Email = u.Email
		m.DisplayName = u.DisplayName
	}
	return m, nil
}

func (s *Store) UpdateMemberRole(ctx context.Context, workspaceID, memberID string, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok || m.WorkspaceID != workspaceID {
		return auth.ErrNotFound
	}
	m.Role = role
	s.members[memberID] = m
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, workspaceID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok || m.WorkspaceID != workspaceID {
		return auth.ErrNotFound
	}
	delete(s.members, memberID)
	return nil
}

func (s *Store) ListMembers(ctx context.Context, workspaceID string) ([]workspace.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []workspace.Member
	for _, m := range s.members {
		if m.WorkspaceID != workspaceID {
			continue
		}
		if u, ok := s.users[m.UserID]; ok {
			m.Email = u.Email
			m.DisplayName = u.DisplayName
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].JoinedAt.Before(result[j].JoinedAt) })
	return result, nil
}

// --- finance.Store ---

func (s *Store) ListTransactions(ctx context.Context, workspaceID string, filter finance.TransactionFilter) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []finance.Transaction
	for _, t := range s.transactions {
		if t.WorkspaceID != workspaceID {
			continue
		}
		if filter.StartDate != "" && t.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && t.Date > filter.EndDate {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if u, ok := s.users[t.UserID]; ok {
			t.UserName = u.DisplayName
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn finance.Transaction) (finance.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[txn.WorkspaceID]; !ok {
		return finance.Transaction{}, auth.ErrNotFound
	}
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	s.transactions[txn.ID] = txn
	return txn, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, workspaceID, id string, upd finance.TransactionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return auth.ErrNotFound
	}
	if upd.Type != nil {
		t.Type = *upd.Type
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.Category != nil {
		t.Category = *upd.Category
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	t.UpdatedAt = time.Now().UTC()
	s.transactions[id] = t
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, workspaceID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return auth.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, workspaceID string) ([]finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []finance.Budget
	for _, b := range s.budgets {
		if b.WorkspaceID != workspaceID {
			continue
		}
		b.Spent = s.spentLocked(workspaceID, b.Category, b.StartDate, b.EndDate)
		if u, ok := s.users[b.UserID]; ok {
			b.UserName = u.DisplayName
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// spentLocked sums expense transactions in the budget window. Callers hold mu.
func (s *Store) spentLocked(workspaceID, category, start, end string) float64 {
	var total float64
	for _, t := range s.transactions {
		if t.WorkspaceID != workspaceID || t.Type != finance.TypeExpense {
			continue
		}
		if t.Category != category {
			continue
		}
		if t.Date < start || t.Date > end {
			continue
		}
		total += t.Amount
	}
	return total
}

func (s *Store) CreateBudget(ctx context.Context, b finance.Budget) (finance.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[b.WorkspaceID]; !ok {
		return finance.Budget{}, auth.ErrNotFound
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, workspaceID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return auth.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListGoals(ctx context.Context, workspaceID string) ([]finance.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []finance.Goal
	for _, g := range s.goals {
		if g.WorkspaceID != workspaceID {
			continue
		}
		if u, ok := s.users[g.UserID]; ok {
			g.UserName = u.DisplayName
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline < result[j].Deadline })
	return result, nil
}

func (s *Store) CreateGoal(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[g.WorkspaceID]; !ok {
		return finance.Goal{}, auth.ErrNotFound
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) ContributeToGoal(ctx context.Context, workspaceID, id string, amount float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.WorkspaceID != workspaceID {
		return 0, auth.ErrNotFound
	}
	g.CurrentAmount += amount
	g.UpdatedAt = time.Now().UTC()
	s.goals[id] = g
	return g.CurrentAmount, nil
}

func (s *Store) DeleteGoal(ctx context.Context, workspaceID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.WorkspaceID != workspaceID {
		return auth.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}
