package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/auth"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// Auth rejects requests without a valid bearer token for a live, active
// account and stores that account in the request context.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				status, message := authFailure(err)
				if status >= http.StatusInternalServerError {
					LogEntry(r).WithError(err).Error("[middleware.Auth] failed to load token user")
				}
				response.Fail(w, status, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Authentication token has expired. Please log in again."
	case errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid authentication token."
	case errors.Is(err, service.ErrUserGone):
		return http.StatusUnauthorized, "The user belonging to this token no longer exists."
	case errors.Is(err, service.ErrAccountDeactivated):
		return http.StatusUnauthorized, "Your account has been deactivated. Please contact support."
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again."
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// RequireRole admits only users whose role is one of roles. It must run
// after Auth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				response.Fail(w, http.StatusUnauthorized, "Access denied. No authentication token provided.")
				return
			}
			if !domain.RoleAllowed(user.Role, roles...) {
				response.Fail(w, http.StatusForbidden,
					fmt.Sprintf("Role '%s' is not authorized to access this resource.", user.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
