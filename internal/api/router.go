package api

import (
	"net/http"

	"github.com/dom/taskflow/internal/api/handlers"
	"github.com/dom/taskflow/internal/api/middleware"
	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/dom/taskflow/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Limiters holds the request limiters. A nil limiter disables that limit.
type Limiters struct {
	// API applies to every /api route.
	API *ratelimit.Limiter
	// Auth applies to /api/auth on top of API.
	Auth *ratelimit.Limiter
}

func NewRouter(services *service.Services, limiters Limiters, cfg *config.Config, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(cfg.IsDevelopment()))
	r.Use(middleware.SecureHeaders(cfg.IsDevelopment()))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chiMiddleware.RequestSize(cfg.MaxBodyBytes))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", handlers.Health(cfg.Environment))

	// Initialize handlers
	errs := handlers.NewErrorWriter(cfg.IsDevelopment())
	authHandler := handlers.NewAuthHandler(services.Auth, errs)
	profileHandler := handlers.NewProfileHandler(services.Users, errs)
	taskHandler := handlers.NewTaskHandler(services.Tasks, errs)
	adminHandler := handlers.NewAdminHandler(services.Users, errs)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiters.API, "Too many requests, please try again later."))

		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(limiters.Auth, "Too many authentication attempts, please try again later."))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.With(middleware.Auth(services.Auth)).Get("/me", authHandler.Me)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", profileHandler.GetProfile)
				r.Put("/profile", profileHandler.UpdateProfile)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				// stats must be registered ahead of /{id}
				r.Get("/stats", taskHandler.Stats)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", adminHandler.ListUsers)
				r.Put("/users/{id}/status", adminHandler.SetStatus)
			})
		})
	})

	return r
}
