package postgres_test

import (
	"testing"

	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/repository/postgres"
	"github.com/dom/taskflow/internal/repository/repotest"
	"github.com/dom/taskflow/internal/testutil"
)

func TestPostgresRepositories(t *testing.T) {
	testDB := testutil.NewTestDB(t)

	repotest.Run(t, func(t *testing.T) *repository.Repositories {
		testDB.Truncate(t)
		return postgres.NewRepositories(testDB.DB)
	})
}
