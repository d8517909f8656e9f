// Command ingest runs the places ingestion once and exits.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyfindr/studyfindr-api/internal/config"
	"github.com/studyfindr/studyfindr-api/internal/places"
	"github.com/studyfindr/studyfindr-api/internal/scheduler"
	"github.com/studyfindr/studyfindr-api/internal/store"
	"github.com/studyfindr/studyfindr-api/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel)

	if cfg.GoogleMapsAPIKey == "" {
		logger.Log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer st.Close(ctx)

	ingestor := places.NewIngestor(places.NewClient(cfg.GoogleMapsAPIKey), st.Locations, cfg.PlacesLocations, cfg.PlacesRadius)
	res, err := scheduler.RunIngest(ctx, ingestor, 10*time.Minute)
	if err != nil {
		logger.Log.WithError(err).Error("Ingestion failed")
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"found":    res.Found,
		"unique":   res.Unique,
		"inserted": res.Inserted,
		"updated":  res.Updated,
	}).Info("Ingestion complete")
}
