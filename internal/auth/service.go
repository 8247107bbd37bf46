package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgetbook.org/internal/ids"
)

const minPasswordLength = 8

// Service provides registration, login and token issuance over a Store.
type Service struct {
	store  Store
	tokens *TokenManager
	hasher PasswordHasher
}

// NewService wires the credential store, token issuer and password hasher.
func NewService(store Store, tokens *TokenManager, hasher PasswordHasher) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth store is required")
	}
	if tokens == nil {
		return nil, errors.New("token manager is required")
	}
	return &Service{store: store, tokens: tokens, hasher: hasher}, nil
}

// Tokens exposes the token manager for the HTTP access pipeline.
func (s *Service) Tokens() *TokenManager { return s.tokens }

// Register opens an account: user, default workspace and owner membership are
// created atomically, then a session token is issued.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)
	if !validEmail(email) {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if displayName == "" {
		return Session{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	reg := Registration{
		UserID:        ids.New(ids.PrefixUser),
		Email:         email,
		PasswordHash:  hash,
		DisplayName:   displayName,
		WorkspaceID:   ids.New(ids.PrefixWorkspace),
		WorkspaceName: displayName + "'s Workspace",
		MemberID:      ids.New(ids.PrefixMember),
	}
	user, err := s.store.Register(ctx, reg)
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{
		Token: token,
		User: UserSummary{
			ID:               user.ID,
			Email:            user.Email,
			DisplayName:      user.DisplayName,
			DefaultWorkspace: reg.WorkspaceID,
		},
	}, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same error so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, ErrUnauthorized
	}
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return Session{}, ErrUnauthorized
	}

	// The owned workspace is returned without re-checking that the membership
	// row still exists beyond the join the store performs; see DESIGN.md on
	// the dangling default-workspace question.
	workspaceID, err := s.store.OwnedWorkspaceID(ctx, user.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{
		Token: token,
		User: UserSummary{
			ID:               user.ID,
			Email:            user.Email,
			DisplayName:      user.DisplayName,
			DefaultWorkspace: workspaceID,
		},
	}, nil
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}
