package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/api"
	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/logging"
	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/repository/memory"
	repoPostgres "github.com/dom/taskflow/internal/repository/postgres"
	"github.com/dom/taskflow/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection.
// It skips the test when running with -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_taskflow"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"tasks", "users"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Environment:      config.EnvTest,
		AllowedOrigins:   []string{"http://localhost:5173"},
		MaxBodyBytes:     10 * 1024,
		StoreDriver:      config.StoreMemory,
		StoreTimeout:     2 * time.Second,
		JWTSecret:        "test-jwt-secret-key-for-testing-only",
		JWTExpiresIn:     time.Hour,
		BcryptCost:       bcrypt.MinCost,
		RateLimitWindow:  15 * time.Minute,
		RateLimitMax:     100,
		AuthRateLimitMax: 20,
		LogLevel:         "error",
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer creates a test server backed by the in-memory store with
// rate limiting disabled.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWith(t, TestConfig(), api.Limiters{})
}

// NewTestServerWith creates a test server with the given config and rate
// limiters.
func NewTestServerWith(t *testing.T, cfg *config.Config, limiters api.Limiters) *TestServer {
	t.Helper()

	repos := memory.NewRepositories()
	services := service.NewServices(repos, cfg)
	router := api.NewRouter(services, limiters, cfg, logging.Discard())

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// MemoryLimiters returns in-process limiters using cfg's limits.
func MemoryLimiters(cfg *config.Config) api.Limiters {
	return api.Limiters{
		API:  ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		Auth: ratelimit.NewMemoryLimiter(cfg.AuthRateLimitMax, cfg.RateLimitWindow),
	}
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
