package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
		wantBody   string
	}{
		{name: "admin allowed", user: &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}, wantStatus: http.StatusNoContent},
		{name: "user forbidden", user: &domain.User{ID: uuid.New(), Role: domain.RoleUser}, wantStatus: http.StatusForbidden, wantBody: "Role 'user' is not authorized to access this resource."},
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()

			RequireRole(domain.RoleAdmin)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	user := &domain.User{ID: uuid.New()}
	id, ok := GetUserID(WithUser(context.Background(), user))
	assert.True(t, ok)
	assert.Equal(t, user.ID, id)
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"Bearer abc.def":  "abc.def",
		"bearer abc.def":  "",
		"Basic dXNlcjpw":  "",
		"Bearer ":         "",
		"Bearer  spaced ": "spaced",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(req), header)
	}
}

func TestRateLimit_PerClientIP(t *testing.T) {
	h := RateLimit(ratelimit.NewMemoryLimiter(1, time.Minute), "slow down")(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("10.0.0.1:1111")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("RateLimit-Remaining"))

	blocked := send("10.0.0.1:2222")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Contains(t, blocked.Body.String(), `"success":false`)
	assert.Contains(t, blocked.Body.String(), "slow down")
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1111").Code)
}

// failingCounter stands in for an unreachable shared store.
type failingCounter struct{}

func (failingCounter) Config(int, time.Duration) {}

func (failingCounter) Increment(string, time.Time) error { return errors.New("redis down") }

func (failingCounter) IncrementBy(string, time.Time, int) error { return errors.New("redis down") }

func (failingCounter) Get(string, time.Time, time.Time) (int, int, error) {
	return 0, 0, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiters := []*ratelimit.Limiter{
		nil,
		{Limit: 1, Window: time.Minute, Counter: failingCounter{}},
	}
	for _, limiter := range limiters {
		rec := httptest.NewRecorder()
		RateLimit(limiter, "x")(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LogEntry(r).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"inside handler"`)
	assert.Contains(t, out, `"path":"/brew"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"level":"warning"`)
}

func TestRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	tests := []struct {
		name         string
		exposeDetail bool
		wantError    bool
	}{
		{name: "production hides detail", exposeDetail: false},
		{name: "development exposes detail", exposeDetail: true, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logrus.New()
			log.SetOutput(&buf)
			log.SetFormatter(&logrus.JSONFormatter{})

			h := RequestLogger(log)(Recoverer(tt.exposeDetail)(panicking))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"success":false`)
			assert.Contains(t, rec.Body.String(), `"message":"Internal Server Error"`)
			if tt.wantError {
				assert.Contains(t, rec.Body.String(), `"error":"boom"`)
			} else {
				assert.NotContains(t, rec.Body.String(), "boom")
			}

			assert.Contains(t, buf.String(), `"msg":"request panicked"`)
			assert.Contains(t, buf.String(), `"path":"/explode"`)
		})
	}
}

func TestRecoverer_WithoutRequestLogger(t *testing.T) {
	rec := httptest.NewRecorder()
	Recoverer(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]int
		m["x"] = 1
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestSecureHeaders_HSTSOverTLSOnly(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		proto       string
		wantHSTS    bool
	}{
		{name: "plain http", proto: ""},
		{name: "behind tls proxy", proto: "https", wantHSTS: true},
		{name: "development behind tls proxy", development: true, proto: "https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			SecureHeaders(tt.development)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			if tt.wantHSTS {
				assert.Equal(t, "max-age=15552000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
			} else {
				assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
			}
		})
	}
}
