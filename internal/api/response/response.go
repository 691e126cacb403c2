// Package response writes the JSON envelope every endpoint answers with.
//
// Success:  {"success": true, "message": "...", "data": {...}}
// Failure:  {"success": false, "message": "...", "errors": [{"field", "message"}]}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/dom/taskflow/internal/domain"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`

	// Error carries internal detail for 500s in development only.
	Error string `json:"error,omitempty"`
}

// Data is the keyed payload most endpoints return, e.g. {"task": ...}.
type Data map[string]any

// JSON writes env with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logrus.WithError(err).Warn("[response.JSON] failed to encode response")
	}
}

// Success writes a success envelope. message may be empty.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// OK writes a 200 success envelope without a message.
func OK(w http.ResponseWriter, data any) {
	Success(w, http.StatusOK, "", data)
}

// Fail writes a failure envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Message: message})
}

// ValidationFailed writes a 422 listing every invalid field.
func ValidationFailed(w http.ResponseWriter, fields []domain.FieldError) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{
		Message: "Validation failed",
		Errors:  fields,
	})
}
