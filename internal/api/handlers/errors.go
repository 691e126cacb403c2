package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dom/taskflow/internal/api/middleware"
	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	errMalformedBody = errors.New("malformed request body")
	errBodyTooLarge  = errors.New("request body too large")
	errInvalidID     = errors.New("invalid id")
)

// ErrorWriter maps service and domain errors onto error envelopes. With
// exposeDetail set, 500 responses carry the underlying error text.
type ErrorWriter struct {
	exposeDetail bool
}

func NewErrorWriter(exposeDetail bool) *ErrorWriter {
	return &ErrorWriter{exposeDetail: exposeDetail}
}

// Write answers r with the envelope for err. op names the failing handler
// method in logs.
func (e *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *domain.ValidationError
	var ferr *domain.FilterError

	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr.Fields)
	case errors.As(err, &ferr):
		response.Fail(w, http.StatusBadRequest, ferr.Message)
	case errors.Is(err, errMalformedBody):
		response.Fail(w, http.StatusBadRequest, "Malformed JSON in request body.")
	case errors.Is(err, errBodyTooLarge):
		response.Fail(w, http.StatusRequestEntityTooLarge, "Request body too large.")
	case errors.Is(err, errInvalidID):
		response.Fail(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, domain.ErrNoFields):
		response.Fail(w, http.StatusBadRequest, "No valid fields provided for update.")
	case errors.Is(err, domain.ErrTaskNotFound):
		response.Fail(w, http.StatusNotFound, "Task not found.")
	case errors.Is(err, domain.ErrUserNotFound):
		response.Fail(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, domain.ErrEmailExists):
		response.Fail(w, http.StatusConflict, "An account with this email already exists.")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrAccountDeactivated):
		response.Fail(w, http.StatusUnauthorized, "Your account has been deactivated. Please contact support.")
	case errors.Is(err, service.ErrSelfDeactivation):
		response.Fail(w, http.StatusBadRequest, "You cannot deactivate your own account.")
	case errors.Is(err, domain.ErrStoreUnavailable):
		middleware.LogEntry(r).WithError(err).Warn(fmt.Sprintf("[%s] store unavailable", op))
		response.Fail(w, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
	default:
		middleware.LogEntry(r).WithError(err).Error(fmt.Sprintf("[%s] unexpected error", op))
		env := response.Envelope{Message: "Internal Server Error"}
		if e.exposeDetail {
			env.Error = err.Error()
		}
		response.JSON(w, http.StatusInternalServerError, env)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v
// untouched. Wrong JSON types come back as a validation error naming the
// field.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return errBodyTooLarge
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return errMalformedBody
		}
		return domain.NewValidationError(domain.FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s has an invalid type", field),
		})
	default:
		return errMalformedBody
	}
}

// pathID parses the named URL parameter as a resource id.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
