package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/search"
)

type tripIndex interface {
	IndexTrip(ctx context.Context, trip *models.Trip) error
	DeleteTrip(ctx context.Context, id string) error
}

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Overall sync timeout")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Get().Info("Starting trip index synchronization", "index", cfg.Elasticsearch.Index)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	trips, err := repository.NewTripRepository(db).ListAll(ctx)
	if err != nil {
		logger.Fatal("Failed to load trips", "error", err)
	}

	if err := syncTrips(ctx, esClient, trips); err != nil {
		logger.Fatal("Trip synchronization failed", "error", err)
	}
}

// syncTrips indexes scheduled trips and removes the rest from the index.
func syncTrips(ctx context.Context, index tripIndex, trips []models.Trip) error {
	start := time.Now()
	indexed, removed := 0, 0

	for i := range trips {
		trip := &trips[i]
		if trip.Status != "scheduled" {
			if err := index.DeleteTrip(ctx, trip.ID); err != nil {
				return fmt.Errorf("failed to remove trip %s: %w", trip.ID, err)
			}
			removed++
			continue
		}
		if err := index.IndexTrip(ctx, trip); err != nil {
			return fmt.Errorf("failed to index trip %s: %w", trip.ID, err)
		}
		indexed++
	}

	elapsed := time.Since(start)
	logger.Get().Info("Trip synchronization completed",
		"indexed", indexed,
		"removed", removed,
		"duration", elapsed.String())
	return nil
}
