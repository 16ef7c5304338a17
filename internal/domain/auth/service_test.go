package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
)

type fakeAccountRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.Account
	byEmail map[string]*user.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[uuid.UUID]*user.Account{}, byEmail: map[string]*user.Account{}}
}

func (f *fakeAccountRepo) Create(_ context.Context, a *user.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[a.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*user.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*user.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email], nil
}

func newTestService(repo user.Repository) (*Service, *jwt.Service) {
	jwtSvc := jwt.NewService("test-secret", time.Hour)
	svc := NewService(repo, jwtSvc)
	svc.hashCost = bcrypt.MinCost
	return svc, jwtSvc
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	repo := newFakeAccountRepo()
	svc, jwtSvc := newTestService(repo)

	result, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "  Citizen@Example.COM ",
		Password: "correct-horse",
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Account.Email != "citizen@example.com" {
		t.Fatalf("expected normalized email, got %q", result.Account.Email)
	}
	if result.Account.Role != user.RoleUser {
		t.Fatalf("expected USER role, got %s", result.Account.Role)
	}
	if result.Account.HomePath != user.UserHomePath {
		t.Fatalf("expected user home, got %s", result.Account.HomePath)
	}

	claims, err := jwtSvc.ValidateSessionToken(result.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.AccountID != result.Account.ID || claims.Role != string(user.RoleUser) {
		t.Fatalf("unexpected claims %+v", claims)
	}

	stored := repo.byEmail["citizen@example.com"]
	if stored == nil || stored.PasswordHash == "correct-horse" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(newFakeAccountRepo())
	req := &RegisterRequest{Email: "dup@example.com", Password: "password1"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	req2 := &RegisterRequest{Email: "DUP@example.com", Password: "password2"}
	if _, err := svc.Register(context.Background(), req2); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(newFakeAccountRepo())
	ctx := context.Background()
	if _, err := svc.CreateAccount(ctx, &CreateAccountInput{
		Email: "mod@example.com", Password: "moderate-me", Role: "moderator",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Login(ctx, &LoginRequest{Email: "MOD@example.com", Password: "moderate-me"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Account.Role != user.RoleModerator || result.Account.HomePath != user.AdminHomePath {
		t.Fatalf("unexpected account %+v", result.Account)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Email: "mod@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestCreateAccountRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(newFakeAccountRepo())
	_, err := svc.CreateAccount(context.Background(), &CreateAccountInput{
		Email: "x@example.com", Password: "password1", Role: "SUPERUSER",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	repo := newFakeAccountRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "", ""); err != nil {
		t.Fatalf("empty credentials must be a no-op: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatal("no account expected")
	}

	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(ctx, "root@example.com", "admin-password"); err != nil {
			t.Fatalf("ensure admin #%d: %v", i, err)
		}
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one admin, got %d accounts", len(repo.byID))
	}
	if repo.byEmail["root@example.com"].Role != user.RoleAdmin {
		t.Fatal("expected ADMIN role")
	}
}
