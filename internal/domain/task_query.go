package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Pagination bounds
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// SortField is a task attribute the list endpoint can order by
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortTitle     SortField = "title"
	SortPriority  SortField = "priority"
	SortStatus    SortField = "status"
	SortDueDate   SortField = "dueDate"
)

var sortFields = map[string]SortField{
	string(SortCreatedAt): SortCreatedAt,
	string(SortUpdatedAt): SortUpdatedAt,
	string(SortTitle):     SortTitle,
	string(SortPriority):  SortPriority,
	string(SortStatus):    SortStatus,
	string(SortDueDate):   SortDueDate,
}

// TaskQueryParams holds the raw, untrusted list parameters as received.
type TaskQueryParams struct {
	Search    string
	Status    string
	Priority  string
	SortBy    string
	SortOrder string
	Page      string
	Limit     string
}

// TaskQuery is a validated list specification. OwnerID is always set by
// the server from the authenticated caller.
type TaskQuery struct {
	OwnerID  uuid.UUID
	Search   string
	Status   TaskStatus
	Priority TaskPriority
	SortBy   SortField
	SortAsc  bool
	Page     int
	Limit    int
}

// ParseTaskQuery validates raw list parameters for the given owner.
func ParseTaskQuery(ownerID uuid.UUID, p TaskQueryParams) (TaskQuery, error) {
	q := TaskQuery{
		OwnerID: ownerID,
		Search:  strings.TrimSpace(p.Search),
		SortBy:  SortCreatedAt,
		SortAsc: p.SortOrder == "asc",
		Page:    ParsePage(p.Page),
		Limit:   ParseLimit(p.Limit),
	}

	if p.Status != "" {
		status := TaskStatus(p.Status)
		if !status.IsValid() {
			return TaskQuery{}, &FilterError{Param: "status", Message: "Invalid status filter."}
		}
		q.Status = status
	}

	if p.Priority != "" {
		priority := TaskPriority(p.Priority)
		if !priority.IsValid() {
			return TaskQuery{}, &FilterError{Param: "priority", Message: "Invalid priority filter."}
		}
		q.Priority = priority
	}

	if field, ok := sortFields[p.SortBy]; ok {
		q.SortBy = field
	}

	return q, nil
}

// ParsePage coerces a page number into [1, MaxPage].
func ParsePage(raw string) int {
	page, ok := parseLeadingInt(raw)
	if !ok || page < 1 {
		return DefaultPage
	}
	return min(page, MaxPage)
}

// ParseLimit coerces a page size into [1, MaxLimit]. Missing or
// non-numeric values give DefaultLimit.
func ParseLimit(raw string) int {
	limit, ok := parseLeadingInt(raw)
	if !ok {
		return DefaultLimit
	}
	return min(MaxLimit, max(1, limit))
}

// parseLeadingInt reads an optionally signed run of leading digits and
// ignores whatever follows, so "5abc" is 5 and "2.5" is 2. Values past
// the int range saturate.
func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// only ErrRange is possible on a pure digit run
		n = math.MaxInt
	}
	if neg {
		return -n, true
	}
	return n, true
}

func (q TaskQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Matches reports whether t satisfies the filter part of the query.
func (q TaskQuery) Matches(t *Task) bool {
	if t.UserID != q.OwnerID {
		return false
	}
	if q.Status != "" && t.Status != q.Status {
		return false
	}
	if q.Priority != "" && t.Priority != q.Priority {
		return false
	}
	if q.Search == "" {
		return true
	}

	needle := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Less orders a before b under the query's sort. Missing due dates always
// sort last; ties fall back to id so pages are stable.
func (q TaskQuery) Less(a, b *Task) bool {
	c := compareTasks(a, b, q.SortBy)
	if c == 0 {
		return a.ID.String() < b.ID.String()
	}
	if q.SortBy == SortDueDate && (a.DueDate == nil || b.DueDate == nil) {
		return c < 0
	}
	if q.SortAsc {
		return c < 0
	}
	return c > 0
}

func compareTasks(a, b *Task, field SortField) int {
	switch field {
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortStatus:
		return a.Status.Rank() - b.Status.Rank()
	case SortDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []*Task    `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
