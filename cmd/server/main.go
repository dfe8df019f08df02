package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photofeed/server/internal/config"
	"github.com/photofeed/server/internal/flickr"
	"github.com/photofeed/server/internal/handlers"
	custommw "github.com/photofeed/server/internal/middleware"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
	"github.com/photofeed/server/internal/services"
)

const serviceName = "photofeed-server"

func main() {
	logger := observability.GetLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(observability.ParseLevel(cfg.LogLevel))

	if cfg.Flickr.APIKey == "" {
		logger.Warn("FLICKR_API_KEY is not set, Flickr will reject feed requests")
	}

	// Telemetry
	ctx := context.Background()
	telemetry, err := observability.Initialize(ctx, observability.Config{
		ServiceName:    serviceName,
		ServiceVersion: handlers.Version,
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Errorf("Failed to initialize telemetry: %v", err)
		os.Exit(1)
	}

	var httpMetrics *observability.HTTPMetrics
	var feedMetrics *observability.FeedMetrics
	if cfg.Telemetry.Enabled {
		if httpMetrics, err = observability.NewHTTPMetrics(); err != nil {
			logger.Warnf("HTTP metrics disabled: %v", err)
		}
		if feedMetrics, err = observability.NewFeedMetrics(); err != nil {
			logger.Warnf("Feed metrics disabled: %v", err)
		}
	}

	// Initialize database
	if cfg.UsePostgres() {
		logger.Info("Using PostgreSQL database")
	} else {
		logger.Infof("Using SQLite database at %s", cfg.DatabasePath)
	}
	store, err := repository.Open(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// Flickr
	client, err := flickr.NewClient(flickr.Config{
		APIKey:        cfg.Flickr.APIKey,
		BaseURL:       cfg.Flickr.BaseURL,
		Timeout:       cfg.FlickrTimeout(),
		RatePerSecond: cfg.Flickr.RatePerSecond,
		Burst:         cfg.Flickr.Burst,
	})
	if err != nil {
		logger.Errorf("Failed to create Flickr client: %v", err)
		os.Exit(1)
	}
	photos := repository.NewPhotosRepository(client)

	// Initialize services
	recorder := services.NewPageRecorder(store.Cache, store.History, logger)
	hub := services.NewSessionHub(services.SessionHubConfig{
		PageSize:      cfg.Feed.PageSize,
		DebounceDelay: cfg.DebounceDelay(),
		IdleTimeout:   cfg.SessionIdleTimeout(),
	}, photos, recorder, feedMetrics, logger)
	details, err := services.NewPhotoDetailService(photos, store.Cache, cfg.Feed.DetailCacheSize, logger)
	if err != nil {
		logger.Errorf("Failed to create photo detail service: %v", err)
		os.Exit(1)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(hubDone)
	}()

	if cfg.AuthEnabled() {
		logger.Infof("API key authentication enabled (header %s)", cfg.Security.APIKeyHeader)
	} else {
		logger.Warn("API key authentication disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Sessions:       hub,
		Details:        details,
		Cache:          store.Cache,
		History:        store.History,
		KeyCheck:       custommw.NewKeyChecker(cfg.Security.APIKey, cfg.Security.APIKeyHash),
		APIKeyHeader:   cfg.Security.APIKeyHeader,
		ServiceName:    serviceName,
		HTTPMetrics:    httpMetrics,
		RequestLogging: true,
		Logger:         logger,
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("PhotoFeed server %s starting on %s", handlers.Version, cfg.ServerAddress)
		logger.Infof("Feed page size %d, debounce %s", cfg.Feed.PageSize, cfg.DebounceDelay())

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	stopHub()
	<-hubDone
	recorder.Wait()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Telemetry shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
