package handlers

import (
	"net/http"

	"github.com/dom/taskflow/internal/api/middleware"
	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	errs        *ErrorWriter
}

func NewAuthHandler(authService *service.AuthService, errs *ErrorWriter) *AuthHandler {
	return &AuthHandler{authService: authService, errs: errs}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, "AuthHandler.Register", err)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errs.Write(w, r, "AuthHandler.Register", err)
		return
	}

	middleware.LogEntry(r).WithField("user_id", result.User.ID).Info("[AuthHandler.Register] account created")
	response.Success(w, http.StatusCreated, "Account created successfully.", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, "AuthHandler.Login", err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errs.Write(w, r, "AuthHandler.Login", err)
		return
	}

	response.Success(w, http.StatusOK, "Logged in successfully.", result)
}

// Me returns the account the bearer token belongs to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
		return
	}

	response.OK(w, response.Data{"user": user})
}
