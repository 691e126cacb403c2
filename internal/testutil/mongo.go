package testutil

import (
	"context"
	"testing"
	"time"

	repoMongo "github.com/dom/taskflow/internal/repository/mongo"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestMongo manages a testcontainers MongoDB instance
type TestMongo struct {
	Container testcontainers.Container
	Client    *mongo.Client
	DB        *mongo.Database
}

// NewTestMongo starts a MongoDB container and returns a connected database
// with indexes in place. It skips the test when running with -short.
func NewTestMongo(t *testing.T) *TestMongo {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForListeningPort("27017/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	endpoint, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	if err != nil {
		t.Fatalf("failed to get mongo endpoint: %v", err)
	}

	client, db, err := repoMongo.Connect(ctx, endpoint, "test_taskflow")
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	t.Cleanup(func() {
		client.Disconnect(context.Background())
	})

	if err := repoMongo.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	return &TestMongo{Container: container, Client: client, DB: db}
}

// Truncate removes every document while keeping the indexes
func (tm *TestMongo) Truncate(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	for _, name := range []string{"tasks", "users"} {
		if _, err := tm.DB.Collection(name).DeleteMany(ctx, map[string]any{}); err != nil {
			t.Logf("warning: failed to truncate %s: %v", name, err)
		}
	}
}
