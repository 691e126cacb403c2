package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dom/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Health(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	env := testutil.DecodeSuccess[map[string]string](t, resp, http.StatusOK)
	assert.Equal(t, "TaskFlow API is running", env.Message)
	assert.Equal(t, "test", env.Data["environment"])
	assert.NotEmpty(t, env.Data["timestamp"])
}

func TestRouter_UnknownRoute(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/nope?x=1"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Route not found: /api/nope?x=1")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.Do(t, http.MethodPatch, ts.BaseURL()+"/health", nil, "")
	testutil.AssertErrorResponse(t, resp, http.StatusMethodNotAllowed, "Method PATCH not allowed on /health")
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.RateLimitMax = 3
	cfg.AuthRateLimitMax = 2
	ts := testutil.NewTestServerWith(t, cfg, testutil.MemoryLimiters(cfg))

	t.Run("auth routes", func(t *testing.T) {
		body := map[string]string{"email": "nobody@example.com", "password": "Secret123"}
		for i := 0; i < 2; i++ {
			resp := testutil.Do(t, http.MethodPost, ts.APIURL("/auth/login"), body, "")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("RateLimit-Remaining"))
		}

		resp := testutil.Do(t, http.MethodPost, ts.APIURL("/auth/login"), body, "")
		testutil.AssertErrorResponse(t, resp, http.StatusTooManyRequests,
			"Too many authentication attempts, please try again later.")
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	})

	t.Run("api routes share the window", func(t *testing.T) {
		// three auth attempts already counted against the api limiter
		resp := testutil.Do(t, http.MethodGet, ts.APIURL("/tasks"), nil, "")
		testutil.AssertErrorResponse(t, resp, http.StatusTooManyRequests,
			"Too many requests, please try again later.")
	})

	t.Run("health is not limited", func(t *testing.T) {
		resp, err := http.Get(ts.BaseURL() + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouter_CORS(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{origin: "http://localhost:5173", allowed: true},
		{origin: "http://evil.example.com", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, ts.APIURL("/tasks"), nil)
			require.NoError(t, err)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			if tt.allowed {
				assert.Equal(t, tt.origin, resp.Header.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRouter_BodyLimit(t *testing.T) {
	ts := testutil.NewTestServer(t)

	huge := `{"name": "` + strings.Repeat("a", int(ts.Config.MaxBodyBytes)) + `"}`
	resp := testutil.Do(t, http.MethodPost, ts.APIURL("/auth/register"), huge, "")
	testutil.AssertErrorResponse(t, resp, http.StatusRequestEntityTooLarge, "Request body too large.")
}

func TestRouter_SecurityHeaders(t *testing.T) {
	ts := testutil.NewTestServer(t)

	want := map[string]string{
		"X-Content-Type-Options":            "nosniff",
		"X-Frame-Options":                   "SAMEORIGIN",
		"Referrer-Policy":                   "no-referrer",
		"Content-Security-Policy":           "default-src 'none'; frame-ancestors 'self'",
		"Cross-Origin-Opener-Policy":        "same-origin",
		"X-Permitted-Cross-Domain-Policies": "none",
		"X-Dns-Prefetch-Control":            "off",
	}

	for _, url := range []string{ts.BaseURL() + "/health", ts.APIURL("/nope"), ts.APIURL("/tasks")} {
		t.Run(url, func(t *testing.T) {
			resp, err := http.Get(url)
			require.NoError(t, err)
			defer resp.Body.Close()

			for header, value := range want {
				assert.Equal(t, value, resp.Header.Get(header), header)
			}
			assert.Empty(t, resp.Header.Get("Strict-Transport-Security"), "plain http gets no HSTS")
		})
	}
}
