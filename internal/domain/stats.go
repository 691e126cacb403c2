package domain

// TaskStats summarises a user's tasks by status and priority.
type TaskStats struct {
	ByStatus   map[TaskStatus]int64   `json:"byStatus"`
	ByPriority map[TaskPriority]int64 `json:"byPriority"`
	Total      int64                  `json:"total"`
}

// NewTaskStats builds stats from raw grouped counts. Every known status and
// priority is present in the result; unknown keys are dropped and do not
// contribute to Total.
func NewTaskStats(byStatus, byPriority map[string]int64) TaskStats {
	stats := TaskStats{
		ByStatus:   make(map[TaskStatus]int64, len(AllStatuses)),
		ByPriority: make(map[TaskPriority]int64, len(AllPriorities)),
	}

	for _, s := range AllStatuses {
		count := byStatus[string(s)]
		stats.ByStatus[s] = count
		stats.Total += count
	}
	for _, p := range AllPriorities {
		stats.ByPriority[p] = byPriority[string(p)]
	}

	return stats
}
