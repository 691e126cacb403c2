package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// DefaultPassword satisfies the password strength rules.
const DefaultPassword = "Passw0rd"

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
	role     domain.Role
	inactive bool
}

// NewUserBuilder creates a new UserBuilder with a unique email
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		name:     "Test User",
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: DefaultPassword,
		role:     domain.RoleUser,
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

// Inactive marks the user as deactivated
func (b *UserBuilder) Inactive() *UserBuilder {
	b.inactive = true
	return b
}

// Build stores the user through repo and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repo repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         b.name,
		Email:        domain.NormalizeEmail(b.email),
		PasswordHash: string(hashedPassword),
		Role:         b.role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx := context.Background()
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if b.inactive {
		if user, err = repo.SetActive(ctx, user.ID, false); err != nil {
			t.Fatalf("failed to deactivate user: %v", err)
		}
	}

	return user, b.password
}

// AuthResponse matches the data member of the register and login envelopes
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// BuildAndAuthenticate registers the user via the API and returns the user
// and its bearer token. Role and active flag are applied through the store
// afterwards.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var env Envelope[AuthResponse]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	user := env.Data.User
	ctx := context.Background()
	if b.role != domain.RoleUser {
		if user, err = ts.Repos.User.SetRole(ctx, user.ID, b.role); err != nil {
			t.Fatalf("failed to set role: %v", err)
		}
	}
	if b.inactive {
		if user, err = ts.Repos.User.SetActive(ctx, user.ID, false); err != nil {
			t.Fatalf("failed to deactivate user: %v", err)
		}
	}

	return user, env.Data.Token
}

// TaskBuilder creates test tasks with a builder pattern
type TaskBuilder struct {
	title       string
	description string
	status      domain.TaskStatus
	priority    domain.TaskPriority
	dueDate     *time.Time
	tags        []string
	createdAt   time.Time
}

func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{
		title:    "Task " + uuid.New().String()[:8],
		status:   domain.StatusTodo,
		priority: domain.PriorityMedium,
		tags:     []string{},
	}
}

func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.title = title
	return b
}

func (b *TaskBuilder) WithDescription(description string) *TaskBuilder {
	b.description = description
	return b
}

func (b *TaskBuilder) WithStatus(status domain.TaskStatus) *TaskBuilder {
	b.status = status
	return b
}

func (b *TaskBuilder) WithPriority(priority domain.TaskPriority) *TaskBuilder {
	b.priority = priority
	return b
}

func (b *TaskBuilder) WithDueDate(due time.Time) *TaskBuilder {
	b.dueDate = &due
	return b
}

func (b *TaskBuilder) WithTags(tags ...string) *TaskBuilder {
	b.tags = tags
	return b
}

// WithCreatedAt pins the creation time, useful for ordering tests
func (b *TaskBuilder) WithCreatedAt(at time.Time) *TaskBuilder {
	b.createdAt = at
	return b
}

// Build stores the task for owner through repo
func (b *TaskBuilder) Build(t *testing.T, repo repository.TaskRepository, owner uuid.UUID) *domain.Task {
	t.Helper()

	created := b.createdAt
	if created.IsZero() {
		created = time.Now()
	}

	task := &domain.Task{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		Status:      b.status,
		Priority:    b.priority,
		DueDate:     b.dueDate,
		Tags:        datatypes.JSONSlice[string](append([]string{}, b.tags...)),
		UserID:      owner,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// SeedTasks creates count tasks for owner, one second apart, oldest first
func SeedTasks(t *testing.T, repo repository.TaskRepository, owner uuid.UUID, count int) []*domain.Task {
	t.Helper()

	base := time.Now().Add(-time.Duration(count) * time.Second)
	tasks := make([]*domain.Task, 0, count)
	for i := 0; i < count; i++ {
		tasks = append(tasks, NewTaskBuilder().
			WithTitle(fmt.Sprintf("Task %03d", i)).
			WithCreatedAt(base.Add(time.Duration(i)*time.Second)).
			Build(t, repo, owner))
	}
	return tasks
}

// CreateAuthenticatedRequest builds a JSON request with an optional bearer token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		bodyReader = bytes.NewBuffer(nil)
	case string:
		bodyReader = bytes.NewBufferString(b)
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends an authenticated JSON request and returns the response
func Do(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
