package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/repository/memory"
	"github.com/dom/taskflow/internal/repository/repotest"
	"github.com/dom/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repository.Repositories {
		return memory.NewRepositories()
	})
}

func TestTaskRepository_ReturnsCopies(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, repos.User)
	task := testutil.NewTaskBuilder().WithTags("a").Build(t, repos.Task, owner.ID)

	got, err := repos.Task.GetByID(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	got.Title = "mutated"
	got.Tags[0] = "mutated"

	again, err := repos.Task.GetByID(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, again.Title)
	assert.Equal(t, "a", again.Tags[0])
}

func TestUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		conflict int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &domain.User{Name: "Racer", Email: "race@example.com", PasswordHash: "h"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, domain.ErrEmailExists) {
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 19, conflict)
}
