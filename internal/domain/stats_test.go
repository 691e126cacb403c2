package domain_test

import (
	"testing"

	"github.com/dom/taskflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewTaskStats(t *testing.T) {
	stats := domain.NewTaskStats(
		map[string]int64{"todo": 3, "in-progress": 2, "archived": 7},
		map[string]int64{"high": 4, "low": 1, "critical": 9},
	)

	assert.Equal(t, map[domain.TaskStatus]int64{
		domain.StatusTodo:       3,
		domain.StatusInProgress: 2,
		domain.StatusCompleted:  0,
	}, stats.ByStatus)
	assert.Equal(t, map[domain.TaskPriority]int64{
		domain.PriorityLow:    1,
		domain.PriorityMedium: 0,
		domain.PriorityHigh:   4,
	}, stats.ByPriority)
	assert.Equal(t, int64(5), stats.Total)
}

func TestNewTaskStats_Empty(t *testing.T) {
	stats := domain.NewTaskStats(nil, nil)

	assert.Len(t, stats.ByStatus, 3)
	assert.Len(t, stats.ByPriority, 3)
	assert.Zero(t, stats.Total)
}
