package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/taskflow/internal/api/middleware"
	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
)

type ProfileHandler struct {
	userService *service.UserService
	errs        *ErrorWriter
}

func NewProfileHandler(userService *service.UserService, errs *ErrorWriter) *ProfileHandler {
	return &ProfileHandler{userService: userService, errs: errs}
}

// UpdateProfileRequest holds the optional profile fields. Absent fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.errs.Write(w, r, "ProfileHandler.GetProfile", err)
		return
	}

	response.OK(w, response.Data{"user": user})
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, "ProfileHandler.UpdateProfile", err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			response.Fail(w, http.StatusConflict, "This email address is already in use.")
			return
		}
		h.errs.Write(w, r, "ProfileHandler.UpdateProfile", err)
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully.", response.Data{"user": user})
}
