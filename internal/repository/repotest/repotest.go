// Package repotest holds behavioural tests shared by every repository
// implementation. Each store package calls Run from its own tests.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty set of repositories.
type Factory func(t *testing.T) *repository.Repositories

// Run executes the full user and task suites against factory.
func Run(t *testing.T, factory Factory) {
	t.Run("User", func(t *testing.T) { RunUserRepository(t, factory) })
	t.Run("Task", func(t *testing.T) { RunTaskRepository(t, factory) })
}

func RunUserRepository(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := factory(t).User

		tests := []struct {
			name    string
			email   string
			wantErr error
		}{
			{name: "successful creation", email: "alice@example.com"},
			{name: "duplicate email", email: "alice@example.com", wantErr: domain.ErrEmailExists},
			{name: "duplicate email differing in case", email: "  ALICE@example.com", wantErr: domain.ErrEmailExists},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				user := &domain.User{
					ID:           uuid.New(),
					Name:         "Alice",
					Email:        domain.NormalizeEmail(tt.email),
					PasswordHash: "hashedpassword",
					Role:         domain.RoleUser,
					IsActive:     true,
				}
				err := repo.Create(ctx, user)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Empty(t, user.PasswordHash, "create must not hand the hash back")
			})
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		repo := factory(t).User
		user, _ := testutil.NewUserBuilder().WithName("Get By Id").Build(t, repo)

		tests := []struct {
			name    string
			id      uuid.UUID
			wantErr error
		}{
			{name: "existing user", id: user.ID},
			{name: "non-existent user", id: uuid.New(), wantErr: domain.ErrUserNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.GetByID(ctx, tt.id)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, "Get By Id", got.Name)
				assert.Empty(t, got.PasswordHash)
				assert.True(t, got.IsActive)
				assert.Equal(t, domain.RoleUser, got.Role)
			})
		}
	})

	t.Run("GetByEmail", func(t *testing.T) {
		repo := factory(t).User
		user, _ := testutil.NewUserBuilder().WithEmail("bob@example.com").Build(t, repo)

		got, err := repo.GetByEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Empty(t, got.PasswordHash)

		withHash, err := repo.GetByEmailWithPassword(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, withHash.PasswordHash)

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = repo.GetByEmailWithPassword(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		repo := factory(t).User
		user, _ := testutil.NewUserBuilder().WithEmail("carol@example.com").Build(t, repo)
		other, _ := testutil.NewUserBuilder().WithEmail("dave@example.com").Build(t, repo)

		name := "Carol Updated"
		updated, err := repo.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, name, updated.Name)
		assert.Equal(t, "carol@example.com", updated.Email)

		taken := "DAVE@example.com"
		_, err = repo.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Email: &taken})
		assert.ErrorIs(t, err, domain.ErrEmailExists)

		own := "carol@example.com"
		_, err = repo.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Email: &own})
		assert.NoError(t, err, "keeping one's own email is not a conflict")

		fresh := "carol.new@example.com"
		updated, err = repo.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Email: &fresh})
		require.NoError(t, err)
		assert.Equal(t, fresh, updated.Email)

		_, err = repo.GetByEmail(ctx, "carol@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound, "old email is released")

		hash := "new-hash"
		_, err = repo.UpdateProfile(ctx, other.ID, domain.ProfileUpdate{PasswordHash: &hash})
		require.NoError(t, err)
		withHash, err := repo.GetByEmailWithPassword(ctx, "dave@example.com")
		require.NoError(t, err)
		assert.Equal(t, hash, withHash.PasswordHash)

		_, err = repo.UpdateProfile(ctx, uuid.New(), domain.ProfileUpdate{Name: &name})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("TouchLastLogin", func(t *testing.T) {
		repo := factory(t).User
		user, _ := testutil.NewUserBuilder().Build(t, repo)
		require.Nil(t, user.LastLogin)

		require.NoError(t, repo.TouchLastLogin(ctx, user.ID))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLogin)
		assert.WithinDuration(t, time.Now(), *got.LastLogin, time.Minute)

		assert.ErrorIs(t, repo.TouchLastLogin(ctx, uuid.New()), domain.ErrUserNotFound)
	})

	t.Run("SetActiveAndRole", func(t *testing.T) {
		repo := factory(t).User
		user, _ := testutil.NewUserBuilder().Build(t, repo)

		got, err := repo.SetActive(ctx, user.ID, false)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		got, err = repo.SetRole(ctx, user.ID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, got.Role)
		assert.False(t, got.IsActive)
		assert.Empty(t, got.PasswordHash)

		_, err = repo.SetActive(ctx, uuid.New(), true)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("List", func(t *testing.T) {
		repo := factory(t).User
		for i := 0; i < 5; i++ {
			testutil.NewUserBuilder().Build(t, repo)
		}

		users, total, err := repo.List(ctx, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, users, 2)
		for _, u := range users {
			assert.Empty(t, u.PasswordHash)
		}

		users, _, err = repo.List(ctx, 2, 4)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		users, _, err = repo.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func RunTaskRepository(t *testing.T, factory Factory) {
	ctx := context.Background()

	setup := func(t *testing.T) (*repository.Repositories, uuid.UUID, uuid.UUID) {
		repos := factory(t)
		owner, _ := testutil.NewUserBuilder().Build(t, repos.User)
		other, _ := testutil.NewUserBuilder().Build(t, repos.User)
		return repos, owner.ID, other.ID
	}

	query := func(t *testing.T, owner uuid.UUID, p domain.TaskQueryParams) domain.TaskQuery {
		t.Helper()
		q, err := domain.ParseTaskQuery(owner, p)
		require.NoError(t, err)
		return q
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repos, owner, other := setup(t)
		due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
		task := testutil.NewTaskBuilder().
			WithTitle("Write report").
			WithDescription("quarterly").
			WithPriority(domain.PriorityHigh).
			WithDueDate(due).
			WithTags("work", "q1").
			Build(t, repos.Task, owner)

		got, err := repos.Task.GetByID(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write report", got.Title)
		assert.Equal(t, "quarterly", got.Description)
		assert.Equal(t, domain.StatusTodo, got.Status)
		assert.Equal(t, domain.PriorityHigh, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))
		assert.Equal(t, []string{"work", "q1"}, []string(got.Tags))
		assert.Equal(t, owner, got.UserID)

		_, err = repos.Task.GetByID(ctx, other, task.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound, "another owner sees not found")

		_, err = repos.Task.GetByID(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		repos, owner, other := setup(t)
		due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
		task := testutil.NewTaskBuilder().WithDueDate(due).WithTags("a").Build(t, repos.Task, owner)

		title := "Renamed"
		status := domain.StatusCompleted
		tags := []string{"x", "y"}
		got, err := repos.Task.Update(ctx, owner, task.ID, domain.TaskPatch{
			Title:  &title,
			Status: &status,
			Tags:   &tags,
		})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, status, got.Status)
		assert.Equal(t, domain.PriorityMedium, got.Priority, "untouched fields are kept")
		assert.Equal(t, []string{"x", "y"}, []string(got.Tags))
		require.NotNil(t, got.DueDate)

		got, err = repos.Task.Update(ctx, owner, task.ID, domain.TaskPatch{SetDueDate: true})
		require.NoError(t, err)
		assert.Nil(t, got.DueDate, "an explicit null clears the due date")

		_, err = repos.Task.Update(ctx, other, task.ID, domain.TaskPatch{Title: &title})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		stored, err := repos.Task.GetByID(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, title, stored.Title)
		assert.Nil(t, stored.DueDate)
	})

	t.Run("Delete", func(t *testing.T) {
		repos, owner, other := setup(t)
		task := testutil.NewTaskBuilder().Build(t, repos.Task, owner)

		assert.ErrorIs(t, repos.Task.Delete(ctx, other, task.ID), domain.ErrTaskNotFound)
		require.NoError(t, repos.Task.Delete(ctx, owner, task.ID))
		assert.ErrorIs(t, repos.Task.Delete(ctx, owner, task.ID), domain.ErrTaskNotFound)

		_, err := repos.Task.GetByID(ctx, owner, task.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("ListPagination", func(t *testing.T) {
		repos, owner, other := setup(t)
		seeded := testutil.SeedTasks(t, repos.Task, owner, 55)
		testutil.SeedTasks(t, repos.Task, other, 3)

		tests := []struct {
			page, limit string
			wantLen     int
		}{
			{page: "1", limit: "20", wantLen: 20},
			{page: "2", limit: "20", wantLen: 20},
			{page: "3", limit: "20", wantLen: 15},
			{page: "4", limit: "20", wantLen: 0},
			{page: "1", limit: "500", wantLen: 55},
			{page: "500000000000000000", limit: "20", wantLen: 0},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("page=%s,limit=%s", tt.page, tt.limit), func(t *testing.T) {
				tasks, total, err := repos.Task.List(ctx, query(t, owner, domain.TaskQueryParams{Page: tt.page, Limit: tt.limit}))
				require.NoError(t, err)
				assert.Equal(t, int64(55), total)
				assert.Len(t, tasks, tt.wantLen)
				for _, task := range tasks {
					assert.Equal(t, owner, task.UserID)
				}
			})
		}

		// Default order is newest first.
		tasks, _, err := repos.Task.List(ctx, query(t, owner, domain.TaskQueryParams{}))
		require.NoError(t, err)
		assert.Equal(t, seeded[54].ID, tasks[0].ID)
		assert.Equal(t, seeded[35].ID, tasks[19].ID)
	})

	t.Run("ListFilters", func(t *testing.T) {
		repos, owner, other := setup(t)
		testutil.NewTaskBuilder().WithTitle("Buy milk").WithStatus(domain.StatusCompleted).Build(t, repos.Task, owner)
		testutil.NewTaskBuilder().WithTitle("Fix bug").WithDescription("login 100% broken").WithPriority(domain.PriorityHigh).Build(t, repos.Task, owner)
		testutil.NewTaskBuilder().WithTitle("Plan trip").WithTags("Holiday", "family").Build(t, repos.Task, owner)
		testutil.NewTaskBuilder().WithTitle("Holiday shopping").Build(t, repos.Task, other)

		tests := []struct {
			name   string
			params domain.TaskQueryParams
			want   []string
		}{
			{name: "status", params: domain.TaskQueryParams{Status: "completed"}, want: []string{"Buy milk"}},
			{name: "priority", params: domain.TaskQueryParams{Priority: "high"}, want: []string{"Fix bug"}},
			{name: "search title case-insensitive", params: domain.TaskQueryParams{Search: "MILK"}, want: []string{"Buy milk"}},
			{name: "search description", params: domain.TaskQueryParams{Search: "broken"}, want: []string{"Fix bug"}},
			{name: "search tag only", params: domain.TaskQueryParams{Search: "holiday"}, want: []string{"Plan trip"}},
			{name: "search tag miss", params: domain.TaskQueryParams{Search: "work"}, want: []string{}},
			{name: "search is literal", params: domain.TaskQueryParams{Search: "100%"}, want: []string{"Fix bug"}},
			{name: "search wildcard is literal", params: domain.TaskQueryParams{Search: "_"}, want: []string{}},
			{name: "combined", params: domain.TaskQueryParams{Search: "i", Status: "todo", Priority: "high"}, want: []string{"Fix bug"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				q := query(t, owner, tt.params)
				q.SortBy, q.SortAsc = domain.SortTitle, true
				tasks, total, err := repos.Task.List(ctx, q)
				require.NoError(t, err)
				titles := make([]string, 0, len(tasks))
				for _, task := range tasks {
					titles = append(titles, task.Title)
				}
				assert.Equal(t, tt.want, titles)
				assert.Equal(t, int64(len(tt.want)), total)
			})
		}
	})

	t.Run("ListSort", func(t *testing.T) {
		repos, owner, _ := setup(t)
		early := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		a := testutil.NewTaskBuilder().WithTitle("b").WithPriority(domain.PriorityHigh).WithStatus(domain.StatusCompleted).WithDueDate(early.Add(48*time.Hour)).Build(t, repos.Task, owner)
		b := testutil.NewTaskBuilder().WithTitle("c").WithPriority(domain.PriorityLow).WithStatus(domain.StatusInProgress).Build(t, repos.Task, owner)
		c := testutil.NewTaskBuilder().WithTitle("a").WithPriority(domain.PriorityMedium).WithStatus(domain.StatusTodo).WithDueDate(early).Build(t, repos.Task, owner)

		tests := []struct {
			sortBy, order string
			want          []uuid.UUID
		}{
			{sortBy: "title", order: "asc", want: []uuid.UUID{c.ID, a.ID, b.ID}},
			{sortBy: "title", order: "desc", want: []uuid.UUID{b.ID, a.ID, c.ID}},
			{sortBy: "priority", order: "asc", want: []uuid.UUID{b.ID, c.ID, a.ID}},
			{sortBy: "priority", order: "desc", want: []uuid.UUID{a.ID, c.ID, b.ID}},
			{sortBy: "status", order: "asc", want: []uuid.UUID{c.ID, b.ID, a.ID}},
			{sortBy: "dueDate", order: "asc", want: []uuid.UUID{c.ID, a.ID, b.ID}},
			{sortBy: "dueDate", order: "desc", want: []uuid.UUID{a.ID, c.ID, b.ID}},
		}

		for _, tt := range tests {
			t.Run(tt.sortBy+"_"+tt.order, func(t *testing.T) {
				tasks, _, err := repos.Task.List(ctx, query(t, owner, domain.TaskQueryParams{SortBy: tt.sortBy, SortOrder: tt.order}))
				require.NoError(t, err)
				got := make([]uuid.UUID, 0, len(tasks))
				for _, task := range tasks {
					got = append(got, task.ID)
				}
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("Counts", func(t *testing.T) {
		repos, owner, other := setup(t)
		testutil.NewTaskBuilder().WithStatus(domain.StatusTodo).WithPriority(domain.PriorityHigh).Build(t, repos.Task, owner)
		testutil.NewTaskBuilder().WithStatus(domain.StatusTodo).WithPriority(domain.PriorityHigh).Build(t, repos.Task, owner)
		testutil.NewTaskBuilder().WithStatus(domain.StatusCompleted).WithPriority(domain.PriorityLow).Build(t, repos.Task, owner)
		testutil.NewTaskBuilder().WithStatus(domain.StatusInProgress).Build(t, repos.Task, other)

		byStatus, err := repos.Task.CountByStatus(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"todo": 2, "completed": 1}, byStatus)

		byPriority, err := repos.Task.CountByPriority(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"high": 2, "low": 1}, byPriority)

		empty, err := repos.Task.CountByStatus(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		repos, owner, _ := setup(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := repos.Task.List(cctx, query(t, owner, domain.TaskQueryParams{}))
		assert.Error(t, err)
	})
}
