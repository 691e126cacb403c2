package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FieldError mirrors one entry of an error envelope's errors list
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope mirrors the API response wrapper with a typed data member
type Envelope[T any] struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    T            `json:"data"`
	Errors  []FieldError `json:"errors"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// DecodeSuccess verifies status and success flag and returns the envelope
func DecodeSuccess[T any](t *testing.T, resp *http.Response, expectedStatus int) Envelope[T] {
	t.Helper()

	require.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var env Envelope[T]
	AssertJSONResponse(t, resp, &env)
	require.True(t, env.Success, "expected success envelope, got message %q", env.Message)
	return env
}

// AssertErrorResponse verifies an error envelope with expected status and
// message, returning its field errors
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) []FieldError {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var env Envelope[json.RawMessage]
	AssertJSONResponse(t, resp, &env)
	assert.False(t, env.Success, "expected failure envelope")
	assert.Equal(t, expectedMessage, env.Message, "error message mismatch")
	return env.Errors
}

// RawBody returns the response body as a string
func RawBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	return string(body)
}
