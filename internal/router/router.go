package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hudsonjuan/digno-acai/internal/catalog"
	"github.com/hudsonjuan/digno-acai/internal/config"
	"github.com/hudsonjuan/digno-acai/internal/handler"
	"github.com/hudsonjuan/digno-acai/internal/service"
	"github.com/hudsonjuan/digno-acai/internal/ws"
)

// New creates a Chi router with all kiosk routes wired up.
func New(cfg *config.Config, cat *catalog.Catalog, svc *service.SessionService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration: the kiosk shell is served separately
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Catalog (static menu for the shell)
	catalogHandler := handler.NewCatalogHandler(cat)
	catalogHandler.RegisterRoutes(r)

	// WebSocket route: kiosk screens subscribe to their session's events
	r.Get("/ws/sessions/{sid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Sessions (order + kiosk state machine)
	sessionHandler := handler.NewSessionHandler(svc)
	r.Route("/sessions", sessionHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
