package server

import (
	"context"
	"net/http"
	"time"

	"charity-events/internal/auth"
	"charity-events/internal/categories/category_api"
	cat_db "charity-events/internal/categories/db"
	categories "charity-events/internal/categories/service"
	"charity-events/internal/config"
	event_db "charity-events/internal/events/db"
	"charity-events/internal/events/event_api"
	events "charity-events/internal/events/service"
	"charity-events/internal/logger"
	"charity-events/internal/notify"
	"charity-events/internal/pass"
	reg_db "charity-events/internal/registrations/db"
	"charity-events/internal/registrations/registration_api"
	registrations "charity-events/internal/registrations/service"
	"charity-events/internal/sse"
	"charity-events/internal/stats"
	"charity-events/internal/stats/stats_api"
	"charity-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
)

// Deps are the shared resources the router wires into the handlers.
type Deps struct {
	DB        *bun.DB
	Config    *config.Config
	Logger    *logger.Logger
	Publisher notify.Publisher
	Hub       *sse.Hub
	// StatsCache may be nil.
	StatsCache stats.Cache
}

func NewRouter(d Deps) http.Handler {
	if d.Publisher == nil {
		d.Publisher = notify.Nop{}
	}
	if d.Hub == nil {
		d.Hub = sse.NewHub()
	}
	log := d.Logger
	cfg := d.Config

	eventService := events.NewEventService(&event_db.DB{Bun: d.DB}, d.Publisher, log)
	categoryService := categories.NewCategoryService(&cat_db.DB{Bun: d.DB}, d.Publisher, log)
	registrationService := registrations.NewRegistrationService(&reg_db.DB{Bun: d.DB}, pass.NewSigner(cfg.Pass.Secret), d.Publisher, log)
	statsService := stats.NewService(&stats.DB{Bun: d.DB}, d.StatsCache, log)

	eventHandler := event_api.NewHandler(eventService, log, cfg.Listing.PageSize)
	categoryHandler := category_api.NewHandler(categoryService, log)
	registrationHandler := registration_api.NewHandler(registrationService, log)
	statsHandler := stats_api.NewHandler(statsService, log)
	streamHandler := sse.NewHandler(d.Hub, log)

	admin := auth.AdminOnly(cfg.Auth.AdminSecret, log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:     []string{requestIDHeader},
		MaxAge:             300,
		OptionsPassthrough: true,
	}))
	// preflights pass through so every OPTIONS gets the same 200
	r.Use(answerOptions)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorCode(w, http.StatusNotFound, utils.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorCode(w, http.StatusMethodNotAllowed, utils.CodeMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health(d.DB))
		r.Get("/stream", streamHandler.Stream)

		r.Route("/events", func(r chi.Router) {
			r.Get("/stats/overview", statsHandler.EventOverview)
			eventHandler.RegisterRoutes(r, admin)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/stats/overview", statsHandler.CategoryOverview)
			categoryHandler.RegisterRoutes(r, admin)
		})
		r.Route("/registrations", func(r chi.Router) {
			registrationHandler.RegisterRoutes(r, admin)
		})
	})
	log.Info("ROUTER", "Routes registered under /api")

	return r
}

func health(db *bun.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
				Success:   false,
				Error:     "database unavailable",
				Code:      utils.CodeInternal,
				Timestamp: time.Now(),
			})
			return
		}
		utils.WriteSuccess(w, http.StatusOK, "ok", map[string]string{"database": "up"})
	}
}
