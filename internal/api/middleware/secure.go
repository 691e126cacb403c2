package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the hardening headers every response carries. HSTS
// is only sent over TLS and never in development.
func SecureHeaders(development bool) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		IsDevelopment:             development,
		STSSeconds:                15552000,
		STSIncludeSubdomains:      true,
		SSLProxyHeaders:           map[string]string{"X-Forwarded-Proto": "https"},
		CustomFrameOptionsValue:   "SAMEORIGIN",
		ContentTypeNosniff:        true,
		ReferrerPolicy:            "no-referrer",
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'self'",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	})

	extra := chi.Chain(
		chiMiddleware.SetHeader("X-DNS-Prefetch-Control", "off"),
		chiMiddleware.SetHeader("X-Download-Options", "noopen"),
		chiMiddleware.SetHeader("X-Permitted-Cross-Domain-Policies", "none"),
		chiMiddleware.SetHeader("Origin-Agent-Cluster", "?1"),
		chiMiddleware.SetHeader("X-XSS-Protection", "0"),
	)

	return func(next http.Handler) http.Handler {
		return s.Handler(extra.Handler(next))
	}
}
