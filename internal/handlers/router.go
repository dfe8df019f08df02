package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custommw "github.com/photofeed/server/internal/middleware"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
	"github.com/photofeed/server/internal/services"
)

// RouterConfig wires the HTTP surface
type RouterConfig struct {
	Sessions *services.SessionHub
	Details  *services.PhotoDetailService
	Cache    repository.PhotoCacheRepo
	History  repository.SearchHistoryRepo

	// KeyCheck nil disables API key authentication
	KeyCheck     custommw.KeyChecker
	APIKeyHeader string

	ServiceName string
	// HTTPMetrics nil disables request metrics
	HTTPMetrics *observability.HTTPMetrics
	// RequestLogging enables chi's request logger
	RequestLogging bool
	Logger         *observability.Logger
}

// NewRouter builds the chi router serving the API
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.GetLogger()
	}

	healthHandler := NewHealthHandler(cfg.Sessions)
	sessionHandler := NewSessionHandler(cfg.Sessions, logger)
	wsHandler := NewWebSocketHandler(cfg.Sessions, logger)
	photoHandler := NewPhotoHandler(cfg.Details, cfg.Cache, logger)
	docsHandler := NewDocsHandler()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.RequestLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	if cfg.ServiceName != "" {
		r.Use(observability.TracingMiddleware(cfg.ServiceName))
	}
	r.Use(observability.MetricsMiddleware(cfg.HTTPMetrics))
	r.Use(custommw.APIKeyAuth(cfg.KeyCheck, cfg.APIKeyHeader))

	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Get("/api/version", VersionHandler)

	r.Get("/swagger/doc.json", docsHandler.Spec)
	r.Get("/swagger/*", docsHandler.UI)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Delete)
			r.Put("/query", sessionHandler.SetQuery)
			r.Post("/search", sessionHandler.Search)
			r.Post("/scroll", sessionHandler.Scroll)
			r.Post("/more", sessionHandler.LoadMore)
			r.Get("/ws", wsHandler.HandleConnection)
		})
	})

	r.Route("/api/photos/{id}", func(r chi.Router) {
		r.Get("/", photoHandler.GetDetails)
		r.Get("/url", photoHandler.GetURL)
	})

	if cfg.History != nil {
		historyHandler := NewHistoryHandler(cfg.History, logger)
		r.Get("/api/searches/recent", historyHandler.Recent)
	}

	return r
}
