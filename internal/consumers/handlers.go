package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/stan.go"

	"busline/internal/logger"
	"busline/internal/metrics"
	"busline/internal/models"
)

type SeatRecounter interface {
	RecountAvailableSeats(ctx context.Context, scheduleID string) (int, error)
	GetByID(ctx context.Context, id string) (*models.Trip, error)
}

// TripIndexer is satisfied by *search.ElasticsearchClient.
type TripIndexer interface {
	IndexTrip(ctx context.Context, trip *models.Trip) error
}

// TripsCacheInvalidator is satisfied by *cache.ValkeyClient.
type TripsCacheInvalidator interface {
	InvalidateTrips(ctx context.Context) error
}

type Handlers struct {
	trips   SeatRecounter
	indexer TripIndexer
	cache   TripsCacheInvalidator
}

// NewHandlers creates the message handlers; indexer and cache may be nil.
func NewHandlers(trips SeatRecounter, indexer TripIndexer, cache TripsCacheInvalidator) *Handlers {
	return &Handlers{trips: trips, indexer: indexer, cache: cache}
}

// HandleBookingCreated - booking.created
func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	h.handle(models.EventBookingCreated, m, h.ProcessBookingCreated)
}

// HandleCartCheckedOut - cart.checked_out
func (h *Handlers) HandleCartCheckedOut(m *stan.Msg) {
	h.handle(models.EventCartCheckedOut, m, h.ProcessCartCheckedOut)
}

// handle acks only processed messages; failed ones are redelivered after
// the ack wait.
func (h *Handlers) handle(subject string, m *stan.Msg, process func(context.Context, []byte) error) {
	start := time.Now()
	ctx := context.Background()

	if err := process(ctx, m.Data); err != nil {
		metrics.MessagesProcessingFailedTotal.WithLabelValues(subject).Inc()
		logger.WithContext(ctx).Error("Failed to process message",
			"error", err,
			"subject", subject,
			"sequence", m.Sequence,
			"redelivered", m.Redelivered)
		return
	}

	metrics.MessagesProcessedTotal.WithLabelValues(subject).Inc()
	metrics.MessagesProcessingDuration.WithLabelValues(subject).Observe(time.Since(start).Seconds())

	if err := m.Ack(); err != nil {
		logger.WithContext(ctx).Error("Failed to ack message", "error", err, "subject", subject)
	}
}

// ProcessBookingCreated refreshes the availability of the booked trip in
// the database, the search index and the trips cache.
func (h *Handlers) ProcessBookingCreated(ctx context.Context, data []byte) error {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// Битое сообщение не исправится при повторе
		logger.WithContext(ctx).Error("Failed to unmarshal booking created event", "error", err)
		return nil
	}

	available, err := h.trips.RecountAvailableSeats(ctx, event.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to recount seats for schedule %s: %w", event.ScheduleID, err)
	}

	logger.WithContext(ctx).Info("Processed booking created event",
		"booking_id", event.BookingID,
		"schedule_id", event.ScheduleID,
		"available_seats", available)

	if h.indexer != nil {
		trip, err := h.trips.GetByID(ctx, event.ScheduleID)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to load trip for reindex", "error", err, "schedule_id", event.ScheduleID)
		} else if trip != nil {
			if err := h.indexer.IndexTrip(ctx, trip); err != nil {
				logger.WithContext(ctx).Error("Failed to reindex trip", "error", err, "schedule_id", event.ScheduleID)
			}
		}
	}

	if h.cache != nil {
		if err := h.cache.InvalidateTrips(ctx); err != nil {
			logger.WithContext(ctx).Error("Failed to invalidate trips cache", "error", err)
		}
	}

	return nil
}

func (h *Handlers) ProcessCartCheckedOut(ctx context.Context, data []byte) error {
	var event models.CartCheckedOutEvent
	if err := json.Unmarshal(data, &event); err != nil {
		logger.WithContext(ctx).Error("Failed to unmarshal cart checked out event", "error", err)
		return nil
	}

	logger.WithContext(ctx).Info("Processed cart checked out event",
		"user_id", event.UserID,
		"app_session_id", event.AppSessionID,
		"items", event.ItemCount,
		"bookings", len(event.BookingIDs),
		"total", event.Total)
	return nil
}
