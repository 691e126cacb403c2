package repository

import (
	"context"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
)

// UserRepository persists user accounts. Implementations return
// domain.ErrUserNotFound for missing records and domain.ErrEmailExists when
// a write would duplicate an email. Reads other than GetByEmailWithPassword
// never populate PasswordHash.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error)
}

// TaskRepository persists tasks. Every lookup is scoped by owner; a task
// owned by someone else is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, int64, error)
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error)
	CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error)
}

type Repositories struct {
	User UserRepository
	Task TaskRepository

	// Close releases the underlying connections. May be nil.
	Close func() error
}
