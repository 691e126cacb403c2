package service_test

import (
	"context"
	"testing"

	"github.com/dom/taskflow/internal/auth"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
	"github.com/dom/taskflow/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		services, repos := newServices(t)
		user, _ := testutil.NewUserBuilder().WithName("Old Name").WithEmail("old@example.com").Build(t, repos.User)

		got, err := services.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{Name: strPtr(" New Name ")})
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.Name)
		assert.Equal(t, "old@example.com", got.Email)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		services, repos := newServices(t)
		user, _ := testutil.NewUserBuilder().Build(t, repos.User)
		testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, repos.User)

		_, err := services.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{Email: strPtr("Taken@Example.com")})
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})

	t.Run("password is re-hashed", func(t *testing.T) {
		services, repos := newServices(t)
		user, _ := testutil.NewUserBuilder().WithEmail("pw@example.com").Build(t, repos.User)

		_, err := services.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{Password: strPtr("Changed9")})
		require.NoError(t, err)

		stored, err := repos.User.GetByEmailWithPassword(ctx, "pw@example.com")
		require.NoError(t, err)
		assert.True(t, auth.ComparePassword("Changed9", stored.PasswordHash))
		assert.False(t, auth.ComparePassword(testutil.DefaultPassword, stored.PasswordHash))
	})

	t.Run("invalid fields", func(t *testing.T) {
		services, repos := newServices(t)
		user, _ := testutil.NewUserBuilder().Build(t, repos.User)

		_, err := services.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Name:     strPtr("X"),
			Password: strPtr("short"),
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
	})

	t.Run("empty update returns profile", func(t *testing.T) {
		services, repos := newServices(t)
		user, _ := testutil.NewUserBuilder().WithName("Same Name").Build(t, repos.User)

		got, err := services.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{})
		require.NoError(t, err)
		assert.Equal(t, "Same Name", got.Name)
	})

	t.Run("missing user", func(t *testing.T) {
		services, _ := newServices(t)
		_, err := services.Users.UpdateProfile(ctx, uuid.New(), service.ProfileInput{Name: strPtr("Someone")})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_Admin(t *testing.T) {
	ctx := context.Background()
	services, repos := newServices(t)

	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, repos.User)
	target, _ := testutil.NewUserBuilder().WithEmail("target@example.com").Build(t, repos.User)
	for i := 0; i < 3; i++ {
		testutil.NewUserBuilder().Build(t, repos.User)
	}

	page, err := services.Users.ListUsers(ctx, "2", "2")
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, domain.Pagination{Total: 5, Page: 2, Limit: 2, TotalPages: 3, HasNextPage: true, HasPrevPage: true}, page.Pagination)

	got, err := services.Users.SetActive(ctx, admin.ID, target.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = services.Users.SetActive(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, service.ErrSelfDeactivation)

	_, err = services.Users.SetActive(ctx, admin.ID, uuid.New(), true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	promoted, err := services.Users.Promote(ctx, "TARGET@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	_, err = services.Users.Promote(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
