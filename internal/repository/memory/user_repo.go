package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
)

type userRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *userRepository {
	return &userRepository{
		users:   make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return domain.ErrEmailExists
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	user.Email = email

	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[email] = user.ID

	user.PasswordHash = ""
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user.Safe(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.GetByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Safe(), nil
}

func (r *userRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := *r.users[id]
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	return r.mutate(ctx, id, func(u *domain.User) error {
		if update.Email != nil {
			email := domain.NormalizeEmail(*update.Email)
			if owner, ok := r.byEmail[email]; ok && owner != id {
				return domain.ErrEmailExists
			}
			delete(r.byEmail, u.Email)
			r.byEmail[email] = id
			u.Email = email
		}
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.PasswordHash != nil {
			u.PasswordHash = *update.PasswordHash
		}
		return nil
	})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error) {
	return r.mutate(ctx, id, func(u *domain.User) error {
		u.IsActive = active
		return nil
	})
}

func (r *userRepository) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	return r.mutate(ctx, id, func(u *domain.User) error {
		u.Role = role
		return nil
	})
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	if err := checkContext(ctx); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u.Safe())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	return window(all, limit, offset), int64(len(all)), nil
}

// mutate applies fn to the stored user under the write lock. fn sees the
// live record; nothing is changed when it returns an error.
func (r *userRepository) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.User) error) (*domain.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	draft := *user
	if err := fn(&draft); err != nil {
		return nil, err
	}
	draft.UpdatedAt = time.Now()
	*user = draft

	return user.Safe(), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
