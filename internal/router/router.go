package router

import (
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config wraps the router options coming from the configuration
type Config struct {
	Production bool
	CORS       bool
}

// NewChiRouter builds the HTTP surface of the automation engine
func NewChiRouter(config Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(CustomZapLogger)
	r.Use(middleware.Recoverer)
	if config.CORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(rg chi.Router) {
		rg.Get("/isalive", handlers.IsAlive)

		rg.Route("/events", func(rg chi.Router) {
			rg.Get("/", handlers.GetEvents)
			rg.Post("/", handlers.PostEvent)
			rg.Get("/{id}", handlers.GetEvent)
			rg.Post("/{id}/replay", handlers.ReplayEvent)
		})

		rg.Route("/rules", func(rg chi.Router) {
			rg.Get("/", handlers.GetRules)
			rg.Post("/", handlers.PostRule)
			rg.Post("/test", handlers.TestRule)
			rg.Get("/{id}", handlers.GetRule)
			rg.Put("/{id}", handlers.PutRule)
			rg.Delete("/{id}", handlers.DeleteRule)
			rg.Post("/{id}/toggle", handlers.ToggleRule)
			rg.Post("/{id}/trigger", handlers.TriggerRule)
		})

		rg.Get("/executions", handlers.GetExecutions)
		rg.Get("/stats", handlers.GetStats)

		rg.Route("/tasks", func(rg chi.Router) {
			rg.Get("/", handlers.GetTasks)
			rg.Get("/{id}", handlers.GetTask)
			rg.Put("/{id}/status", handlers.UpdateTaskStatus)
		})

		rg.Route("/notifications", func(rg chi.Router) {
			rg.Get("/", handlers.GetNotifications)
			rg.Put("/{id}/read", handlers.UpdateRead)
			rg.Get("/sse", handlers.NotificationsSSERegister)
			rg.Get("/ws", handlers.NotificationsWSRegister)
		})
	})

	return r
}
