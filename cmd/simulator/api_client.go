package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Priority string   `json:"priority"`
	DueDate  *string  `json:"dueDate"`
	Tags     []string `json:"tags"`
}

type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

type Stats struct {
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
	Total      int            `json:"total"`
}

// APIError is a non-success response from the backend
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// Register creates a new account
func (c *APIClient) Register(name, email, password string) (*AuthResponse, error) {
	var out envelope[AuthResponse]
	err := c.do(http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "", http.StatusCreated, &out)
	if err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &out.Data, nil
}

// Login signs in an existing account
func (c *APIClient) Login(email, password string) (*AuthResponse, error) {
	var out envelope[AuthResponse]
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", http.StatusOK, &out)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &out.Data, nil
}

// Me returns the account behind token
func (c *APIClient) Me(token string) (*User, error) {
	var out envelope[struct {
		User User `json:"user"`
	}]
	if err := c.do(http.MethodGet, "/auth/me", nil, token, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("me failed: %w", err)
	}
	return &out.Data.User, nil
}

// CreateTask creates a task from the given fields
func (c *APIClient) CreateTask(token string, fields map[string]interface{}) (*Task, error) {
	var out envelope[struct {
		Task Task `json:"task"`
	}]
	if err := c.do(http.MethodPost, "/tasks", fields, token, http.StatusCreated, &out); err != nil {
		return nil, fmt.Errorf("create task failed: %w", err)
	}
	return &out.Data.Task, nil
}

// UpdateTask applies a partial update
func (c *APIClient) UpdateTask(token, id string, fields map[string]interface{}) (*Task, error) {
	var out envelope[struct {
		Task Task `json:"task"`
	}]
	if err := c.do(http.MethodPut, "/tasks/"+id, fields, token, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("update task failed: %w", err)
	}
	return &out.Data.Task, nil
}

// DeleteTask removes a task
func (c *APIClient) DeleteTask(token, id string) error {
	if err := c.do(http.MethodDelete, "/tasks/"+id, nil, token, http.StatusOK, nil); err != nil {
		return fmt.Errorf("delete task failed: %w", err)
	}
	return nil
}

// GetTask fetches a single task
func (c *APIClient) GetTask(token, id string) (*Task, error) {
	var out envelope[struct {
		Task Task `json:"task"`
	}]
	if err := c.do(http.MethodGet, "/tasks/"+id, nil, token, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &out.Data.Task, nil
}

// ListTasks runs a list query
func (c *APIClient) ListTasks(token string, query url.Values) (*TaskPage, error) {
	var out envelope[TaskPage]
	if err := c.do(http.MethodGet, "/tasks?"+query.Encode(), nil, token, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return &out.Data, nil
}

// GetStats fetches the task counts
func (c *APIClient) GetStats(token string) (*Stats, error) {
	var out envelope[struct {
		Stats Stats `json:"stats"`
	}]
	if err := c.do(http.MethodGet, "/tasks/stats", nil, token, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("stats failed: %w", err)
	}
	return &out.Data.Stats, nil
}

// do sends a JSON request and decodes the response into out when the
// status matches want
func (c *APIClient) do(method, path string, body interface{}, token string, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
