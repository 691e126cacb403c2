package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/taskflow/internal/auth"
	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/validation"
	"github.com/google/uuid"
)

var ErrSelfDeactivation = errors.New("cannot deactivate own account")

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	timeout    time.Duration
}

func NewUserService(userRepo repository.UserRepository, cfg *config.Config) *UserService {
	return &UserService{
		userRepo:   userRepo,
		bcryptCost: cfg.BcryptCost,
		timeout:    cfg.StoreTimeout,
	}
}

// ProfileInput is a partial profile update; nil fields are left alone.
type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []*domain.User    `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	return user, storeError(err)
}

// UpdateProfile applies the present fields. An empty input returns the
// profile unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error) {
	v := validation.New()
	var update domain.ProfileUpdate

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		v.Name("name", name)
		update.Name = &name
	}
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		v.Email("email", email)
		update.Email = &email
	}
	if input.Password != nil {
		v.Password("password", *input.Password)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	if update.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	return user, storeError(err)
}

// ListUsers pages through every account, newest first.
func (s *UserService) ListUsers(ctx context.Context, rawPage, rawLimit string) (*UserPage, error) {
	page := domain.ParsePage(rawPage)
	limit := domain.ParseLimit(rawLimit)

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	users, total, err := s.userRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, storeError(err)
	}

	return &UserPage{
		Users:      users,
		Pagination: domain.NewPagination(total, page, limit),
	}, nil
}

// SetActive activates or deactivates an account on behalf of actorID.
// Admins cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*domain.User, error) {
	if actorID == userID && !active {
		return nil, ErrSelfDeactivation
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.SetActive(ctx, userID, active)
	return user, storeError(err)
}

// Promote grants the admin role to the account registered under email.
func (s *UserService) Promote(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}

	user, err = s.userRepo.SetRole(ctx, user.ID, domain.RoleAdmin)
	return user, storeError(err)
}
