package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// AllStatuses contains all valid statuses in workflow order
var AllStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted}

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Rank orders statuses by workflow position. Unknown statuses sort last.
func (s TaskStatus) Rank() int {
	for i, st := range AllStatuses {
		if st == s {
			return i
		}
	}
	return len(AllStatuses)
}

// StatusNames returns AllStatuses as plain strings.
func StatusNames() []string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return names
}

// TaskPriority is the urgency of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// AllPriorities contains all valid priorities from least to most urgent
var AllPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities by urgency. Unknown priorities sort last.
func (p TaskPriority) Rank() int {
	for i, pr := range AllPriorities {
		if pr == p {
			return i
		}
	}
	return len(AllPriorities)
}

// PriorityNames returns AllPriorities as plain strings.
func PriorityNames() []string {
	names := make([]string, len(AllPriorities))
	for i, p := range AllPriorities {
		names[i] = string(p)
	}
	return names
}

// Field limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxTags              = 10
	MaxTagLength         = 30
)

type Task struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string                      `json:"title" gorm:"size:200;not null"`
	Description string                      `json:"description" gorm:"size:2000;not null;default:''"`
	Status      TaskStatus                  `json:"status" gorm:"type:varchar(20);not null;default:'todo';index:idx_tasks_user_status,priority:2"`
	Priority    TaskPriority                `json:"priority" gorm:"type:varchar(10);not null;default:'medium';index:idx_tasks_user_priority,priority:2"`
	DueDate     *time.Time                  `json:"dueDate"`
	Tags        datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb;not null"`
	UserID      uuid.UUID                   `json:"user" gorm:"type:uuid;not null;index:idx_tasks_user_status,priority:1;index:idx_tasks_user_priority,priority:1;index:idx_tasks_user_created,priority:1"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time                   `json:"updatedAt"`

	Owner *User `json:"-" gorm:"foreignKey:UserID"`
}

// TaskPatch is a partial task update. Nil fields are not touched; DueDate
// is applied when SetDueDate is true, a nil DueDate then clears it.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	SetDueDate  bool
	DueDate     *time.Time
	Tags        *[]string
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && !p.SetDueDate && p.Tags == nil
}

// Apply copies the patch onto t and bumps UpdatedAt.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.SetDueDate {
		t.DueDate = p.DueDate
	}
	if p.Tags != nil {
		t.Tags = append(datatypes.JSONSlice[string]{}, (*p.Tags)...)
	}
	t.UpdatedAt = now
}
