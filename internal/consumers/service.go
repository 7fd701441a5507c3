package consumers

import (
	"context"
	"fmt"

	"busline/internal/cache"
	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/logger"
	"busline/internal/messaging"
	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/search"
)

const queueGroup = "consumers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	handlers *Handlers
}

// NewConsumerService connects to the database and NATS. Elasticsearch and
// Valkey are optional; without them the matching refresh step is skipped.
func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)
	cs := &ConsumerService{db: db, nats: natsClient}

	var indexer TripIndexer
	if esClient, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch); err != nil {
		logger.Get().Warn("Elasticsearch unavailable, trips will not be reindexed", "error", err)
	} else {
		indexer = esClient
	}

	var invalidator TripsCacheInvalidator
	if valkeyClient, err := cache.NewValkeyClient(ctx, cfg.Valkey); err != nil {
		logger.Get().Warn("Valkey unavailable, trips cache will not be invalidated", "error", err)
	} else {
		cs.valkey = valkeyClient
		invalidator = valkeyClient
	}

	cs.handlers = NewHandlers(repos.Trips, indexer, invalidator)
	return cs, nil
}

func (cs *ConsumerService) Start() error {
	logger.Get().Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue(models.EventBookingCreated, queueGroup, cs.handlers.HandleBookingCreated); err != nil {
		return fmt.Errorf("failed to start booking consumer: %w", err)
	}

	if _, err := cs.nats.SubscribeQueue(models.EventCartCheckedOut, queueGroup, cs.handlers.HandleCartCheckedOut); err != nil {
		return fmt.Errorf("failed to start checkout consumer: %w", err)
	}

	logger.Get().Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	logger.Get().Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		if err := cs.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
