package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/taskflow/internal/auth"
	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
)

type Services struct {
	Auth  *AuthService
	Users *UserService
	Tasks *TaskService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	return &Services{
		Auth:  NewAuthService(repos.User, tokens, cfg),
		Users: NewUserService(repos.User, cfg),
		Tasks: NewTaskService(repos.Task, cfg),
	}
}

// storeContext bounds a single store interaction.
func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError makes a deadline hit inside the store surface as
// domain.ErrStoreUnavailable regardless of how the driver reported it.
func storeError(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
