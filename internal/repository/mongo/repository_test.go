package mongo_test

import (
	"testing"

	"github.com/dom/taskflow/internal/repository"
	repoMongo "github.com/dom/taskflow/internal/repository/mongo"
	"github.com/dom/taskflow/internal/repository/repotest"
	"github.com/dom/taskflow/internal/testutil"
)

func TestMongoRepositories(t *testing.T) {
	testMongo := testutil.NewTestMongo(t)

	repotest.Run(t, func(t *testing.T) *repository.Repositories {
		testMongo.Truncate(t)
		return &repository.Repositories{
			User: repoMongo.NewUserRepository(testMongo.DB),
			Task: repoMongo.NewTaskRepository(testMongo.DB),
		}
	})
}
