package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/irodav/taskdeck-be/internal/api/handlers"
	"github.com/irodav/taskdeck-be/internal/auth"
	"github.com/irodav/taskdeck-be/internal/config"
	"github.com/irodav/taskdeck-be/internal/ratelimit"
	"github.com/irodav/taskdeck-be/internal/services"
)

// NewRouter creates and configures a new Chi router. The rate limiter wraps
// the entire pipeline, so rejected requests never reach authentication or
// business logic.
func NewRouter(cfg *config.Config, limiter *ratelimit.Limiter, tokens *auth.Manager,
	userService services.UserServiceProvider, taskService services.TaskServiceProvider,
	eventService services.EventServiceProvider) *chi.Mux {

	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(limiter.Middleware())

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	taskHandler := handlers.NewTaskHandler(taskService, cfg.ListEmptyAsNotFound)
	eventHandler := handlers.NewEventHandler(eventService)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware())

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Replace)
				r.Patch("/", taskHandler.Patch)
				r.Delete("/", taskHandler.Delete)
			})
		})

		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}
