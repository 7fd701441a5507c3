package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"

	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/metrics"
	"busline/internal/models"
)

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Booking, error)
}

// EventPublisher is satisfied by *messaging.NATSClient.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// PromoUsageRecorder counts a redemption of a promo code.
type PromoUsageRecorder interface {
	RecordUsage(ctx context.Context, code string) error
}

// BookingSubmitter turns cart items into persisted bookings.
type BookingSubmitter struct {
	bookings  BookingStore
	publisher EventPublisher
	usage     PromoUsageRecorder
}

func NewBookingSubmitter(bookings BookingStore, publisher EventPublisher, usage PromoUsageRecorder) *BookingSubmitter {
	return &BookingSubmitter{bookings: bookings, publisher: publisher, usage: usage}
}

// BuildBookings expands one cart item into one booking per passenger/seat
// pair. Each booking carries the item's per-seat fare and an equal share
// of the item's discount.
func BuildBookings(userID string, item models.CartItem) ([]models.Booking, error) {
	if len(item.Seats) != len(item.Passengers) {
		return nil, fmt.Errorf("cart item %s has %d seats for %d passengers: %w",
			item.ID, len(item.Seats), len(item.Passengers), apperrors.ErrSeatPassengerMismatch)
	}

	bookings := make([]models.Booking, 0, len(item.Passengers))
	if len(item.Passengers) == 0 {
		return bookings, nil
	}

	share := item.DiscountAmount / float64(len(item.Passengers))
	for i, passenger := range item.Passengers {
		booking := models.Booking{
			ScheduleID:        item.Trip.ID,
			UserID:            userID,
			PassengerName:     passenger.FullName,
			PassengerIDNumber: passenger.IDNumber,
			PassengerGender:   passenger.Gender,
			NextOfKin:         passenger.NextOfKin,
			SeatNumber:        item.Seats[i],
			TotalAmount:       item.Trip.Fare,
			DiscountAmount:    share,
			Status:            models.BookingStatusConfirmed,
		}
		if passenger.Phone != "" {
			booking.PassengerPhone = pointer.ToString(passenger.Phone)
		}
		if item.PromoCode != nil {
			booking.PromoCode = pointer.ToString(*item.PromoCode)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

// CreateBookingsFromCart writes the bookings of every item one at a time.
// The first failed write aborts the run and is returned; bookings written
// before it stay in place. The cart is left to the caller. An empty cart
// yields no bookings and no error.
func (s *BookingSubmitter) CreateBookingsFromCart(ctx context.Context, userID string, items []models.CartItem) ([]models.Booking, error) {
	planned := make([][]models.Booking, len(items))
	for i, item := range items {
		bookings, err := BuildBookings(userID, item)
		if err != nil {
			return nil, err
		}
		planned[i] = bookings
	}

	created := make([]models.Booking, 0)
	for i, item := range items {
		for j := range planned[i] {
			booking := planned[i][j]
			if err := s.bookings.Create(ctx, &booking); err != nil {
				metrics.CheckoutFailuresTotal.Inc()
				logger.WithContext(ctx).Error("Booking write failed, aborting checkout",
					"error", err,
					"cart_item_id", item.ID,
					"seat_number", booking.SeatNumber,
					"written", len(created))
				return nil, fmt.Errorf("failed to create booking for seat %s: %w", booking.SeatNumber, err)
			}
			metrics.BookingsSubmittedTotal.Inc()
			created = append(created, booking)
			s.publishCreated(ctx, booking)
		}

		if item.PromoCode != nil && s.usage != nil {
			if err := s.usage.RecordUsage(ctx, *item.PromoCode); err != nil {
				logger.WithContext(ctx).Error("Failed to record promo usage",
					"error", err, "promo_code", *item.PromoCode, "cart_item_id", item.ID)
			}
		}
	}

	return created, nil
}

func (s *BookingSubmitter) publishCreated(ctx context.Context, booking models.Booking) {
	if s.publisher == nil {
		return
	}
	event := models.BookingCreatedEvent{
		BookingID:  booking.ID,
		ScheduleID: booking.ScheduleID,
		UserID:     booking.UserID,
		SeatNumber: booking.SeatNumber,
		Timestamp:  time.Now(),
	}
	if err := s.publisher.Publish(models.EventBookingCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingCreated)
	}
}

// BookingService reads persisted bookings.
type BookingService struct {
	bookings BookingStore
}

func NewBookingService(bookings BookingStore) *BookingService {
	return &BookingService{bookings: bookings}
}

func (s *BookingService) List(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// GetOwned returns a booking only to the user who made it.
func (s *BookingService) GetOwned(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil || booking.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return booking, nil
}
