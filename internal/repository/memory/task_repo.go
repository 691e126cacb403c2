package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

func NewTaskRepository() *taskRepository {
	return &taskRepository{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}
	if task.Tags == nil {
		task.Tags = datatypes.JSONSlice[string]{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.owned(ownerID, id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.owned(ownerID, id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(task, time.Now())
	return cloneTask(task), nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(ownerID, id); !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *taskRepository) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, int64, error) {
	if err := checkContext(ctx); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matched := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if query.Matches(t) {
			matched = append(matched, cloneTask(t))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return query.Less(matched[i], matched[j])
	})

	return window(matched, query.Limit, query.Skip()), int64(len(matched)), nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	return r.countBy(ctx, ownerID, func(t *domain.Task) string { return string(t.Status) })
}

func (r *taskRepository) CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	return r.countBy(ctx, ownerID, func(t *domain.Task) string { return string(t.Priority) })
}

func (r *taskRepository) countBy(ctx context.Context, ownerID uuid.UUID, key func(*domain.Task) string) (map[string]int64, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, t := range r.tasks {
		if t.UserID == ownerID {
			counts[key(t)]++
		}
	}
	return counts, nil
}

func (r *taskRepository) owned(ownerID, id uuid.UUID) (*domain.Task, bool) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, false
	}
	return task, true
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	c.Tags = append(datatypes.JSONSlice[string]{}, t.Tags...)
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.Owner = nil
	return &c
}
