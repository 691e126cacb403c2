package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/taskflow/internal/auth"
	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/validation"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrUserGone           = errors.New("token user no longer exists")
)

type AuthService struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	timeout    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: cfg.BcryptCost,
		timeout:    cfg.StoreTimeout,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	err := validation.New().
		Name("name", input.Name).
		Email("email", input.Email).
		Password("password", input.Password).
		Err()
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeError(err)
	}

	return s.signIn(ctx, user)
}

// Login verifies credentials. Unknown email and wrong password both yield
// ErrInvalidCredentials; a deactivated account is only reported once the
// password has been verified.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)

	err := validation.New().
		Email("email", input.Email).
		Check("password", input.Password, "required", "Password is required").
		Err()
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByEmailWithPassword(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			auth.BurnCompare(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err)
	}

	if !auth.ComparePassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return s.signIn(ctx, user.Safe())
}

// Authenticate resolves a bearer token to a live, active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, storeError(err)
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return user, nil
}

func (s *AuthService) signIn(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, storeError(err)
	}
	now := time.Now()
	user.LastLogin = &now

	return &AuthResult{Token: token, User: user}, nil
}
