package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/internal/models"
)

type fakeTrips struct {
	recounted []string
	err       error
	trip      *models.Trip
}

func (f *fakeTrips) RecountAvailableSeats(ctx context.Context, scheduleID string) (int, error) {
	f.recounted = append(f.recounted, scheduleID)
	return 38, f.err
}

func (f *fakeTrips) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	return f.trip, nil
}

type fakeIndexer struct {
	indexed []string
	err     error
}

func (f *fakeIndexer) IndexTrip(ctx context.Context, trip *models.Trip) error {
	f.indexed = append(f.indexed, trip.ID)
	return f.err
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) InvalidateTrips(ctx context.Context) error {
	f.calls++
	return nil
}

func bookingCreated(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(models.BookingCreatedEvent{
		BookingID: "b1", ScheduleID: "T1", UserID: "u1", SeatNumber: "A1", Timestamp: time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestProcessBookingCreatedRefreshesTrip(t *testing.T) {
	trips := &fakeTrips{trip: &models.Trip{ID: "T1", AvailableSeats: 38}}
	indexer := &fakeIndexer{}
	invalidator := &fakeInvalidator{}
	h := NewHandlers(trips, indexer, invalidator)

	require.NoError(t, h.ProcessBookingCreated(context.Background(), bookingCreated(t)))

	assert.Equal(t, []string{"T1"}, trips.recounted)
	assert.Equal(t, []string{"T1"}, indexer.indexed)
	assert.Equal(t, 1, invalidator.calls)
}

func TestProcessBookingCreatedRecountFailureIsRetried(t *testing.T) {
	trips := &fakeTrips{err: errors.New("db down")}
	invalidator := &fakeInvalidator{}
	h := NewHandlers(trips, nil, invalidator)

	err := h.ProcessBookingCreated(context.Background(), bookingCreated(t))
	assert.Error(t, err)
	assert.Zero(t, invalidator.calls)
}

func TestProcessBookingCreatedIndexFailureIsBestEffort(t *testing.T) {
	trips := &fakeTrips{trip: &models.Trip{ID: "T1"}}
	invalidator := &fakeInvalidator{}
	h := NewHandlers(trips, &fakeIndexer{err: errors.New("es down")}, invalidator)

	assert.NoError(t, h.ProcessBookingCreated(context.Background(), bookingCreated(t)))
	assert.Equal(t, 1, invalidator.calls)
}

func TestProcessBookingCreatedDropsMalformed(t *testing.T) {
	trips := &fakeTrips{}
	h := NewHandlers(trips, nil, nil)

	assert.NoError(t, h.ProcessBookingCreated(context.Background(), []byte("{")))
	assert.Empty(t, trips.recounted)
}

func TestProcessCartCheckedOut(t *testing.T) {
	h := NewHandlers(&fakeTrips{}, nil, nil)
	data, err := json.Marshal(models.CartCheckedOutEvent{UserID: "u1", BookingIDs: []string{"b1", "b2"}, ItemCount: 1})
	require.NoError(t, err)

	assert.NoError(t, h.ProcessCartCheckedOut(context.Background(), data))
}
