package middleware

import (
	"net/http"

	"github.com/dom/taskflow/internal/api/response"
	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/go-chi/httprate"
)

var rateLimitHeaders = httprate.ResponseHeaders{
	Limit:      "RateLimit-Limit",
	Remaining:  "RateLimit-Remaining",
	Reset:      "RateLimit-Reset",
	RetryAfter: "Retry-After",
}

// RateLimit counts requests per client IP against limiter and answers 429
// with message once the budget is used up. A nil limiter disables the
// check. Counter failures let the request through.
func RateLimit(limiter *ratelimit.Limiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		// chi's RealIP has already rewritten RemoteAddr, so KeyByIP sees
		// the forwarded client address.
		return httprate.NewRateLimiter(limiter.Limit, limiter.Window,
			httprate.WithKeyByIP(),
			httprate.WithLimitCounter(limiter.Counter),
			httprate.WithResponseHeaders(rateLimitHeaders),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				response.Fail(w, http.StatusTooManyRequests, message)
			}),
			httprate.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				LogEntry(r).WithError(err).Warn("[middleware.RateLimit] limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
			}),
		).Handler(next)
	}
}
