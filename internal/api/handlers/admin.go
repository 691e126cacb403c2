package handlers

import (
	"net/http"

	"github.com/dom/taskflow/internal/api/middleware"
	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves account management for admins. Role checks happen in
// the router.
type AdminHandler struct {
	userService *service.UserService
	errs        *ErrorWriter
}

func NewAdminHandler(userService *service.UserService, errs *ErrorWriter) *AdminHandler {
	return &AdminHandler{userService: userService, errs: errs}
}

type SetStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.userService.ListUsers(r.Context(), q.Get("page"), q.Get("limit"))
	if err != nil {
		h.errs.Write(w, r, "AdminHandler.ListUsers", err)
		return
	}

	response.OK(w, page)
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
		return
	}

	userID, err := pathID(r, "id")
	if err != nil {
		h.errs.Write(w, r, "AdminHandler.SetStatus", err)
		return
	}

	var req SetStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, "AdminHandler.SetStatus", err)
		return
	}
	if req.IsActive == nil {
		response.ValidationFailed(w, []domain.FieldError{{Field: "isActive", Message: "isActive must be a boolean"}})
		return
	}

	user, err := h.userService.SetActive(r.Context(), actorID, userID, *req.IsActive)
	if err != nil {
		h.errs.Write(w, r, "AdminHandler.SetStatus", err)
		return
	}

	message := "User deactivated successfully."
	if user.IsActive {
		message = "User activated successfully."
	}
	middleware.LogEntry(r).WithFields(logrus.Fields{
		"actor_id":  actorID,
		"user_id":   user.ID,
		"is_active": user.IsActive,
	}).Info("[AdminHandler.SetStatus] account status changed")
	response.Success(w, http.StatusOK, message, response.Data{"user": user})
}
