package service

import (
	"context"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "busline/internal/errors"
	"busline/internal/models"
)

func twoPassengerItem() models.CartItem {
	return models.CartItem{
		ID:    "item-1",
		Trip:  models.Trip{ID: "T1", Fare: 100},
		Seats: []string{"A1", "A2"},
		Passengers: []models.PassengerInfo{
			{FullName: "A", Phone: "0801", IDNumber: "ID-A", Gender: "female", NextOfKin: "K"},
			{FullName: "B", IDNumber: "ID-B", Gender: "male", NextOfKin: "K"},
		},
		Amount:         180,
		DiscountAmount: 20,
		PromoCode:      pointer.ToString("SAVE10"),
	}
}

func TestCreateBookingsFromCartApportionsDiscount(t *testing.T) {
	store := &fakeBookings{}
	publisher := &fakePublisher{}
	usage := &fakeUsage{}
	submitter := NewBookingSubmitter(store, publisher, usage)

	created, err := submitter.CreateBookingsFromCart(context.Background(), "u1", []models.CartItem{twoPassengerItem()})
	require.NoError(t, err)
	require.Len(t, created, 2)

	for i, booking := range created {
		assert.Equal(t, "T1", booking.ScheduleID)
		assert.Equal(t, "u1", booking.UserID)
		assert.Equal(t, 100.0, booking.TotalAmount)
		assert.Equal(t, 10.0, booking.DiscountAmount)
		assert.Equal(t, "SAVE10", pointer.GetString(booking.PromoCode))
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, []string{"A1", "A2"}[i], booking.SeatNumber)
	}
	assert.Equal(t, "A", created[0].PassengerName)
	assert.Equal(t, "0801", pointer.GetString(created[0].PassengerPhone))
	assert.Nil(t, created[1].PassengerPhone)
	assert.Equal(t, "b1", created[0].ID)
	assert.Equal(t, "b2", created[1].ID)

	assert.Equal(t, []string{models.EventBookingCreated, models.EventBookingCreated}, publisher.subjects())
	assert.Equal(t, []string{"SAVE10"}, usage.codes)
}

func TestCreateBookingsFromCartEmpty(t *testing.T) {
	store := &fakeBookings{}
	submitter := NewBookingSubmitter(store, nil, nil)

	bookings, err := submitter.CreateBookingsFromCart(context.Background(), "u1", []models.CartItem{})
	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
	assert.Empty(t, store.created)
}

func TestCreateBookingsFromCartMismatchWritesNothing(t *testing.T) {
	store := &fakeBookings{}
	submitter := NewBookingSubmitter(store, nil, nil)

	bad := twoPassengerItem()
	bad.ID = "item-2"
	bad.Seats = []string{"C1"}

	_, err := submitter.CreateBookingsFromCart(context.Background(), "u1", []models.CartItem{twoPassengerItem(), bad})
	assert.ErrorIs(t, err, apperrors.ErrSeatPassengerMismatch)
	assert.Empty(t, store.created)
}

func TestCreateBookingsFromCartAbortsOnFirstFailure(t *testing.T) {
	store := &fakeBookings{failAt: 1, err: errBoom}
	publisher := &fakePublisher{}
	usage := &fakeUsage{}
	submitter := NewBookingSubmitter(store, publisher, usage)

	second := twoPassengerItem()
	second.ID = "item-2"

	created, err := submitter.CreateBookingsFromCart(context.Background(), "u1", []models.CartItem{twoPassengerItem(), second})
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, created)

	// The write before the failure is kept.
	require.Len(t, store.created, 1)
	assert.Equal(t, "A1", store.created[0].SeatNumber)
	assert.Len(t, publisher.subjects(), 1)
	assert.Empty(t, usage.codes)
}

func TestCreateBookingsFromCartIgnoresPublishAndUsageErrors(t *testing.T) {
	store := &fakeBookings{}
	submitter := NewBookingSubmitter(store, &fakePublisher{err: errBoom}, &fakeUsage{err: errBoom})

	created, err := submitter.CreateBookingsFromCart(context.Background(), "u1", []models.CartItem{twoPassengerItem()})
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestBuildBookingsWithoutPassengers(t *testing.T) {
	bookings, err := BuildBookings("u1", models.CartItem{Trip: models.Trip{ID: "T1", Fare: 100}, DiscountAmount: 5})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingServiceGetOwned(t *testing.T) {
	store := &fakeBookings{byID: map[string]*models.Booking{
		"b1": {ID: "b1", UserID: "u1"},
	}}
	svc := NewBookingService(store)

	booking, err := svc.GetOwned(context.Background(), "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", booking.ID)

	_, err = svc.GetOwned(context.Background(), "u2", "b1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetOwned(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBookingServiceListNeverNil(t *testing.T) {
	bookings, err := NewBookingService(&fakeBookings{}).List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}
