package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dom/taskflow/internal/api/response"
)

// Health reports liveness with the running environment.
func Health(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "TaskFlow API is running", response.Data{
			"environment": environment,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusNotFound, fmt.Sprintf("Route not found: %s", r.URL.RequestURI()))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
}
