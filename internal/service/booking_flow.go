package service

import (
	"context"
	"sync"

	"github.com/AlekSi/pointer"

	apperrors "busline/internal/errors"
	"busline/internal/models"
)

// PromoValidator computes the discount for a code on a trip.
type PromoValidator interface {
	Validate(ctx context.Context, code, tripID string, amount float64) (*models.PromoResult, error)
}

// BookingFlow holds the in-progress selection of one app session.
type BookingFlow struct {
	validator PromoValidator

	mu    sync.Mutex
	state models.BookingFlow
}

func NewBookingFlow(validator PromoValidator) *BookingFlow {
	return &BookingFlow{validator: validator, state: emptyFlow()}
}

func emptyFlow() models.BookingFlow {
	return models.BookingFlow{
		SelectedSeats:    []string{},
		PassengerDetails: []models.PassengerInfo{},
	}
}

// Start resets the flow for trip with passengerCount travellers.
func (f *BookingFlow) Start(trip models.Trip, passengerCount int) error {
	if passengerCount <= 0 {
		return apperrors.ErrInvalidPassengerCount
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = models.BookingFlow{
		Trip:             &trip,
		PassengerCount:   passengerCount,
		SelectedSeats:    []string{},
		PassengerDetails: []models.PassengerInfo{},
		TotalAmount:      trip.Fare * float64(passengerCount),
	}
	return nil
}

// UpdateSeats replaces the selected seats. Cardinality is not checked here.
func (f *BookingFlow) UpdateSeats(seats []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SelectedSeats = append([]string{}, seats...)
}

// UpdatePassengerDetails replaces the passenger list.
func (f *BookingFlow) UpdatePassengerDetails(details []models.PassengerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PassengerDetails = append([]models.PassengerInfo{}, details...)
}

// ApplyPromoCode asks the validator for the discount on the current total.
// On success exactly the promo code, discount and total change; on failure
// the flow is left as it was.
func (f *BookingFlow) ApplyPromoCode(ctx context.Context, code string) (float64, error) {
	f.mu.Lock()
	if f.state.Trip == nil {
		f.mu.Unlock()
		return 0, apperrors.ErrNoBookingInProgress
	}
	tripID := f.state.Trip.ID
	total := f.state.TotalAmount
	f.mu.Unlock()

	result, err := f.validator.Validate(ctx, code, tripID, total)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// The flow may have been restarted or reset while validating.
	if f.state.Trip == nil || f.state.Trip.ID != tripID || f.state.TotalAmount != total {
		return 0, apperrors.ErrNoBookingInProgress
	}
	f.state.PromoCode = pointer.ToString(code)
	f.state.DiscountAmount = result.DiscountAmount
	f.state.TotalAmount = result.FinalAmount
	return result.DiscountAmount, nil
}

// Snapshot returns a copy of the current state.
func (f *BookingFlow) Snapshot() models.BookingFlow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyFlow(f.state)
}

// Reset empties the flow.
func (f *BookingFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = emptyFlow()
}

// take returns the current state and resets the flow atomically.
func (f *BookingFlow) take() models.BookingFlow {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.state
	f.state = emptyFlow()
	return state
}

func copyFlow(state models.BookingFlow) models.BookingFlow {
	out := state
	if state.Trip != nil {
		trip := *state.Trip
		out.Trip = &trip
	}
	out.SelectedSeats = append([]string{}, state.SelectedSeats...)
	out.PassengerDetails = append([]models.PassengerInfo{}, state.PassengerDetails...)
	if state.PromoCode != nil {
		out.PromoCode = pointer.ToString(*state.PromoCode)
	}
	return out
}
