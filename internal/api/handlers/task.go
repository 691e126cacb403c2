package handlers

import (
	"net/http"

	"github.com/dom/taskflow/internal/api/middleware"
	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskService *service.TaskService
	errs        *ErrorWriter
}

func NewTaskHandler(taskService *service.TaskService, errs *ErrorWriter) *TaskHandler {
	return &TaskHandler{taskService: taskService, errs: errs}
}

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags"`
}

// UpdateTaskRequest distinguishes absent fields from explicit nulls.
// Unknown fields are ignored.
type UpdateTaskRequest struct {
	Title       service.Optional[string]   `json:"title"`
	Description service.Optional[string]   `json:"description"`
	Status      service.Optional[string]   `json:"status"`
	Priority    service.Optional[string]   `json:"priority"`
	DueDate     service.Optional[string]   `json:"dueDate"`
	Tags        service.Optional[[]string] `json:"tags"`
}

// owner returns the authenticated caller's id, answering 401 itself when
// there is none.
func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
	}
	return userID, ok
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, "TaskHandler.Create", err)
		return
	}

	task, err := h.taskService.Create(r.Context(), ownerID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Create", err)
		return
	}

	response.Success(w, http.StatusCreated, "Task created successfully.", response.Data{"task": task})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.taskService.List(r.Context(), ownerID, domain.TaskQueryParams{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
	})
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.List", err)
		return
	}

	response.OK(w, page)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.Stats(r.Context(), ownerID)
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Stats", err)
		return
	}

	response.OK(w, response.Data{"stats": stats})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	taskID, err := pathID(r, "id")
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Get", err)
		return
	}

	task, err := h.taskService.Get(r.Context(), ownerID, taskID)
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Get", err)
		return
	}

	response.OK(w, response.Data{"task": task})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	taskID, err := pathID(r, "id")
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Update", err)
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, "TaskHandler.Update", err)
		return
	}

	task, err := h.taskService.Update(r.Context(), ownerID, taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Update", err)
		return
	}

	response.Success(w, http.StatusOK, "Task updated successfully.", response.Data{"task": task})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	taskID, err := pathID(r, "id")
	if err != nil {
		h.errs.Write(w, r, "TaskHandler.Delete", err)
		return
	}

	if err := h.taskService.Delete(r.Context(), ownerID, taskID); err != nil {
		h.errs.Write(w, r, "TaskHandler.Delete", err)
		return
	}

	middleware.LogEntry(r).WithField("task_id", taskID).Info("[TaskHandler.Delete] task deleted")
	response.Success(w, http.StatusOK, "Task deleted successfully.", nil)
}
