package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type stubStore struct {
	registerFn    func(context.Context, Registration) (User, error)
	findByEmailFn func(context.Context, string) (User, error)
	ownedFn       func(context.Context, string) (string, error)
}

func (s *stubStore) Register(ctx context.Context, reg Registration) (User, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, reg)
	}
	return User{ID: reg.UserID, Email: reg.Email, DisplayName: reg.DisplayName}, nil
}

func (s *stubStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return User{}, ErrNotFound
}

func (s *stubStore) OwnedWorkspaceID(ctx context.Context, userID string) (string, error) {
	if s.ownedFn != nil {
		return s.ownedFn(ctx, userID)
	}
	return "", nil
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	tm := NewTokenManager("test-secret", "budgetbook", time.Hour)
	svc, err := NewService(store, tm, NewPasswordHasher(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterCreatesAtomicRows(t *testing.T) {
	var captured Registration
	store := &stubStore{
		registerFn: func(_ context.Context, reg Registration) (User, error) {
			captured = reg
			return User{ID: reg.UserID, Email: reg.Email, DisplayName: reg.DisplayName}, nil
		},
	}
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), " Alice@X.com ", "password123", " Alice ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if captured.Email != "alice@x.com" {
		t.Fatalf("expected normalized email, got %q", captured.Email)
	}
	if captured.WorkspaceName != "Alice's Workspace" {
		t.Fatalf("unexpected workspace name %q", captured.WorkspaceName)
	}
	if captured.UserID == "" || captured.WorkspaceID == "" || captured.MemberID == "" {
		t.Fatal("expected all three identifiers populated")
	}
	if captured.PasswordHash == "password123" || captured.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if session.Token == "" {
		t.Fatal("expected session token")
	}
	if session.User.DefaultWorkspace != captured.WorkspaceID {
		t.Fatalf("default workspace mismatch: %s vs %s", session.User.DefaultWorkspace, captured.WorkspaceID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	cases := []struct {
		name                     string
		email, password, display string
	}{
		{"bad email", "not-an-email", "password123", "Alice"},
		{"short password", "a@x.com", "short", "Alice"},
		{"empty display name", "a@x.com", "password123", "  "},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.email, tc.password, tc.display); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestRegisterConflictPassesThrough(t *testing.T) {
	store := &stubStore{
		registerFn: func(context.Context, Registration) (User, error) {
			return User{}, ErrConflict
		},
	}
	svc := newTestService(t, store)
	if _, err := svc.Register(context.Background(), "a@x.com", "password123", "Alice"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginUnknownEmailAndBadPasswordLookAlike(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &stubStore{
		findByEmailFn: func(_ context.Context, email string) (User, error) {
			if email == "known@x.com" {
				return User{ID: "user_1", Email: email, PasswordHash: hash}, nil
			}
			return User{}, ErrNotFound
		},
	}
	svc := newTestService(t, store)

	_, errUnknown := svc.Login(context.Background(), "ghost@x.com", "whatever-pass")
	_, errWrongPw := svc.Login(context.Background(), "known@x.com", "wrong-password")
	if !errors.Is(errUnknown, ErrUnauthorized) || !errors.Is(errWrongPw, ErrUnauthorized) {
		t.Fatalf("expected identical unauthorized errors, got %v / %v", errUnknown, errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatal("error shapes must not reveal which field was wrong")
	}
}

func TestLoginResolvesOwnedWorkspace(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, _ := hasher.Hash("password123")
	store := &stubStore{
		findByEmailFn: func(context.Context, string) (User, error) {
			return User{ID: "user_1", Email: "a@x.com", DisplayName: "Alice", PasswordHash: hash}, nil
		},
		ownedFn: func(_ context.Context, userID string) (string, error) {
			if userID != "user_1" {
				t.Fatalf("unexpected user id %s", userID)
			}
			return "ws_1", nil
		},
	}
	svc := newTestService(t, store)

	session, err := svc.Login(context.Background(), "A@X.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.DefaultWorkspace != "ws_1" {
		t.Fatalf("unexpected workspace %s", session.User.DefaultWorkspace)
	}
	if session.Token == "" {
		t.Fatal("expected token")
	}
	if !strings.HasPrefix(session.Token, "eyJ") {
		t.Fatalf("expected a JWT, got %q", session.Token)
	}
}

func TestLoginToleratesMissingOwnedWorkspace(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, _ := hasher.Hash("password123")
	store := &stubStore{
		findByEmailFn: func(context.Context, string) (User, error) {
			return User{ID: "user_1", Email: "a@x.com", PasswordHash: hash}, nil
		},
		ownedFn: func(context.Context, string) (string, error) {
			return "", ErrNotFound
		},
	}
	svc := newTestService(t, store)

	session, err := svc.Login(context.Background(), "a@x.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.DefaultWorkspace != "" {
		t.Fatalf("expected empty workspace, got %s", session.User.DefaultWorkspace)
	}
}
