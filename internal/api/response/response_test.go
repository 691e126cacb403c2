package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/taskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Task created successfully.", Data{"task": map[string]string{"title": "x"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task created successfully.", body["message"])
	assert.Equal(t, map[string]any{"task": map[string]any{"title": "x"}}, body["data"])
	assert.NotContains(t, body, "errors")
}

func TestOK_OmitsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, Data{"n": 1})

	body := decode(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "message")
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "Task not found.")

	body := decode(t, rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Task not found.", body["message"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "error")
}

func TestValidationFailed(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationFailed(rec, []domain.FieldError{{Field: "title", Message: "Task title is required"}})

	body := decode(t, rec)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, []any{map[string]any{"field": "title", "message": "Task title is required"}}, body["errors"])
}
