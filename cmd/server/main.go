package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/internal/handlers"
	"github.com/studyfindr/studyfindr-api/internal/places"
	"github.com/studyfindr/studyfindr-api/internal/scheduler"
	"github.com/studyfindr/studyfindr-api/internal/services"
	"github.com/studyfindr/studyfindr-api/internal/store"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
	"github.com/studyfindr/studyfindr-api/pkg/metrics"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	// --- Services ---
	userService := services.NewUserService(st.Users, st.Files)
	bookmarkService := services.NewBookmarkService(st.Bookmarks, userService)
	reviewService := services.NewReviewService(st.Reviews, st.Users)
	locationService := services.NewLocationService(st.Locations)

	router := handlers.NewRouter(cfg, handlers.Services{
		Users:     userService,
		Bookmarks: bookmarkService,
		Reviews:   reviewService,
		Locations: locationService,
	})

	var jobs *cron.Cron
	if cfg.GoogleMapsAPIKey != "" {
		ingestor := places.NewIngestor(places.NewClient(cfg.GoogleMapsAPIKey), st.Locations, cfg.PlacesLocations, cfg.PlacesRadius)
		jobs, err = scheduler.StartPlacesCron(cfg.PlacesCron, ingestor, 10*time.Minute)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to schedule places ingestion")
		}
	} else {
		logger.Log.Info("GOOGLE_MAPS_API_KEY not set, places ingestion disabled")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 20*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 20*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if jobs != nil {
		<-jobs.Stop().Done()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Failed to close store")
	}
}
