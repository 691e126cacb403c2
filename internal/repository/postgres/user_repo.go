package postgres

import (
	"context"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err, domain.ErrUserNotFound)
	}
	user.PasswordHash = ""
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Omit("password_hash").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Omit("password_hash").
		First(&user, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		First(&user, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	values := map[string]interface{}{"updated_at": time.Now()}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Email != nil {
		values["email"] = domain.NormalizeEmail(*update.Email)
	}
	if update.PasswordHash != nil {
		values["password_hash"] = *update.PasswordHash
	}

	return r.update(ctx, id, values)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", now)
	if res.Error != nil {
		return translateError(res.Error, domain.ErrUserNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error) {
	return r.update(ctx, id, map[string]interface{}{"is_active": active, "updated_at": time.Now()})
}

func (r *userRepository) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	return r.update(ctx, id, map[string]interface{}{"role": role, "updated_at": time.Now()})
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, domain.ErrUserNotFound)
	}

	var users []*domain.User
	err := r.db.WithContext(ctx).
		Omit("password_hash").
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, translateError(err, domain.ErrUserNotFound)
	}
	return users, total, nil
}

func (r *userRepository) update(ctx context.Context, id uuid.UUID, values map[string]interface{}) (*domain.User, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return nil, translateError(res.Error, domain.ErrUserNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}
