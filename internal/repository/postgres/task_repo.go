package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.Tags == nil {
		task.Tags = datatypes.JSONSlice[string]{}
	}
	return translateError(r.db.WithContext(ctx).Create(task).Error, domain.ErrTaskNotFound)
}

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		First(&task, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		return nil, translateError(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	values := map[string]interface{}{"updated_at": time.Now()}
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	if patch.Status != nil {
		values["status"] = *patch.Status
	}
	if patch.Priority != nil {
		values["priority"] = *patch.Priority
	}
	if patch.SetDueDate {
		if patch.DueDate == nil {
			values["due_date"] = gorm.Expr("NULL")
		} else {
			values["due_date"] = *patch.DueDate
		}
	}
	if patch.Tags != nil {
		values["tags"] = datatypes.JSONSlice[string](*patch.Tags)
	}

	// Single statement so the owner check and the write are atomic.
	var task domain.Task
	res := r.db.WithContext(ctx).
		Model(&task).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(values)
	if res.Error != nil {
		return nil, translateError(res.Error, domain.ErrTaskNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&domain.Task{})
	if res.Error != nil {
		return translateError(res.Error, domain.ErrTaskNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Scopes(taskFilter(query)).
		Count(&total).Error
	if err != nil {
		return nil, 0, translateError(err, domain.ErrTaskNotFound)
	}

	tasks := make([]*domain.Task, 0, query.Limit)
	err = r.db.WithContext(ctx).
		Scopes(taskFilter(query)).
		Order(taskOrder(query)).
		Offset(query.Skip()).
		Limit(query.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, translateError(err, domain.ErrTaskNotFound)
	}

	return tasks, total, nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	return r.countBy(ctx, ownerID, "status")
}

func (r *taskRepository) CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	return r.countBy(ctx, ownerID, "priority")
}

func (r *taskRepository) countBy(ctx context.Context, ownerID uuid.UUID, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select(column+" AS key, COUNT(*) AS count").
		Where("user_id = ?", ownerID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, domain.ErrTaskNotFound)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// taskFilter restricts a query to the owner's tasks matching query.
func taskFilter(query domain.TaskQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", query.OwnerID)
		if query.Status != "" {
			db = db.Where("status = ?", query.Status)
		}
		if query.Priority != "" {
			db = db.Where("priority = ?", query.Priority)
		}
		if query.Search != "" {
			pattern := "%" + escapeLike(query.Search) + "%"
			db = db.Where(
				"(title ILIKE ? OR description ILIKE ? OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tasks.tags) AS tag WHERE tag ILIKE ?))",
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

func taskOrder(query domain.TaskQuery) string {
	dir := "DESC"
	if query.SortAsc {
		dir = "ASC"
	}

	var expr string
	switch query.SortBy {
	case domain.SortUpdatedAt:
		expr = "updated_at " + dir
	case domain.SortTitle:
		expr = "title " + dir
	case domain.SortPriority:
		expr = rankCase("priority", domain.PriorityNames()) + " " + dir
	case domain.SortStatus:
		expr = rankCase("status", domain.StatusNames()) + " " + dir
	case domain.SortDueDate:
		expr = "due_date " + dir + " NULLS LAST"
	default:
		expr = "created_at " + dir
	}
	return expr + ", id ASC"
}

// rankCase orders enum columns by declaration order rather than
// alphabetically. Unknown values rank after every known one.
func rankCase(column string, values []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", column)
	for i, v := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(values))
	return b.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
