package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
	"github.com/civicsafe/civicsafe-api/internal/pkg/password"
	"github.com/civicsafe/civicsafe-api/internal/pkg/validator"
)

// Service handles authentication business logic
type Service struct {
	accounts   user.Repository
	jwtService *jwt.Service
	hashCost   int
}

// NewService creates auth service
func NewService(accounts user.Repository, jwtService *jwt.Service) *Service {
	return &Service{
		accounts:   accounts,
		jwtService: jwtService,
		hashCost:   password.DefaultCost,
	}
}

// Register creates a USER account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	account, err := s.create(ctx, req.Email, req.Password, req.Name, user.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

// Login authenticates by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil || !password.Verify(req.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(account)
}

// GetCurrentAccount returns the signed-in account
func (s *Service) GetCurrentAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return nil, ErrUserNotFound
	}
	resp := NewAccountResponse(account)
	return &resp, nil
}

// CreateAccount provisions an account with an explicit role
func (s *Service) CreateAccount(ctx context.Context, in *CreateAccountInput) (*AccountResponse, error) {
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if errs := validator.Validate(in); errs != nil {
		if _, bad := errs["role"]; bad {
			return nil, ErrInvalidRole
		}
		return nil, fmt.Errorf("invalid account input: %v", errs)
	}

	role, _ := user.ParseRole(in.Role)
	account, err := s.create(ctx, in.Email, in.Password, in.Name, role)
	if err != nil {
		return nil, err
	}
	resp := NewAccountResponse(account)
	return &resp, nil
}

// EnsureAdmin creates the bootstrap ADMIN account if the email is unused.
// Empty credentials disable seeding.
func (s *Service) EnsureAdmin(ctx context.Context, email, pw string) error {
	if email == "" || pw == "" {
		return nil
	}
	_, err := s.CreateAccount(ctx, &CreateAccountInput{Email: email, Password: pw, Name: "Administrator", Role: string(user.RoleAdmin)})
	if errors.Is(err, ErrEmailAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.LogInfo(ctx, "Bootstrap admin account created", "email", NormalizeEmail(email))
	return nil
}

func (s *Service) create(ctx context.Context, email, pw, name string, role user.Role) (*user.Account, error) {
	email = NormalizeEmail(email)

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.HashWithCost(pw, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &user.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (s *Service) issue(account *user.Account) (*AuthResponse, error) {
	token, expiresAt, err := s.jwtService.GenerateSessionToken(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &AuthResponse{
		Account:   NewAccountResponse(account),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
