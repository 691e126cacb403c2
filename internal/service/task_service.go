package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/validation"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskService struct {
	taskRepo repository.TaskRepository
	timeout  time.Duration
}

func NewTaskService(taskRepo repository.TaskRepository, cfg *config.Config) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		timeout:  cfg.StoreTimeout,
	}
}

// CreateTaskInput holds the client-supplied fields of a new task. Nil
// pointers take the defaults.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	Tags        []string
}

// UpdateTaskInput holds a partial update. Only set fields are applied; a
// null DueDate clears the due date.
type UpdateTaskInput struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[string]
	Priority    Optional[string]
	DueDate     Optional[string]
	Tags        Optional[[]string]
}

func (in UpdateTaskInput) IsEmpty() bool {
	return !in.Title.Set && !in.Description.Set && !in.Status.Set &&
		!in.Priority.Set && !in.DueDate.Set && !in.Tags.Set
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	now := time.Now()
	task := &domain.Task{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(input.Title),
		Status:    domain.StatusTodo,
		Priority:  domain.PriorityMedium,
		Tags:      datatypes.JSONSlice[string]{},
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	v := validation.New()
	v.Title("title", task.Title, true)
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
		v.Description("description", task.Description)
	}
	if input.Status != nil {
		v.Status("status", *input.Status)
		task.Status = domain.TaskStatus(*input.Status)
	}
	if input.Priority != nil {
		v.Priority("priority", *input.Priority)
		task.Priority = domain.TaskPriority(*input.Priority)
	}
	if input.DueDate != nil {
		task.DueDate = v.DueDate("dueDate", *input.DueDate)
	}
	if input.Tags != nil {
		tags := validation.TrimAll(input.Tags)
		v.Tags("tags", tags)
		task.Tags = datatypes.JSONSlice[string](tags)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	task, err := s.taskRepo.GetByID(ctx, ownerID, taskID)
	return task, storeError(err)
}

// Update applies a partial update. An input with no recognised field is
// rejected with domain.ErrNoFields before anything is validated.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	if input.IsEmpty() {
		return nil, domain.ErrNoFields
	}

	patch, err := buildPatch(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	task, err := s.taskRepo.Update(ctx, ownerID, taskID, patch)
	return task, storeError(err)
}

func buildPatch(input UpdateTaskInput) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	v := validation.New()

	if input.Title.Set {
		title := strings.TrimSpace(input.Title.Value)
		v.Title("title", title, false)
		patch.Title = &title
	}
	if input.Description.Set {
		description := strings.TrimSpace(input.Description.Value)
		v.Description("description", description)
		patch.Description = &description
	}
	if input.Status.Set {
		v.Status("status", input.Status.Value)
		status := domain.TaskStatus(input.Status.Value)
		patch.Status = &status
	}
	if input.Priority.Set {
		v.Priority("priority", input.Priority.Value)
		priority := domain.TaskPriority(input.Priority.Value)
		patch.Priority = &priority
	}
	if input.DueDate.Set {
		patch.SetDueDate = true
		if !input.DueDate.Null {
			patch.DueDate = v.DueDate("dueDate", input.DueDate.Value)
		}
	}
	if input.Tags.Set {
		tags := validation.TrimAll(input.Tags.Value)
		v.Tags("tags", tags)
		patch.Tags = &tags
	}

	if err := v.Err(); err != nil {
		return domain.TaskPatch{}, err
	}
	return patch, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	return storeError(s.taskRepo.Delete(ctx, ownerID, taskID))
}

// List runs a filtered, sorted and paginated query over the owner's tasks.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, params domain.TaskQueryParams) (*domain.TaskPage, error) {
	query, err := domain.ParseTaskQuery(ownerID, params)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	tasks, total, err := s.taskRepo.List(ctx, query)
	if err != nil {
		return nil, storeError(err)
	}

	return &domain.TaskPage{
		Tasks:      tasks,
		Pagination: domain.NewPagination(total, query.Page, query.Limit),
	}, nil
}

// Stats counts the owner's tasks by status and by priority.
func (s *TaskService) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.TaskStats, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	byStatus, err := s.taskRepo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}
	byPriority, err := s.taskRepo.CountByPriority(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}

	stats := domain.NewTaskStats(byStatus, byPriority)
	return &stats, nil
}
