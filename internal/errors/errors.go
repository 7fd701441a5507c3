package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")
var ErrNotFound = errors.New("resource not found")
var ErrInvalidInput = errors.New("invalid input")

// Booking flow and cart
var (
	ErrNoBookingInProgress   = errors.New("no booking in progress")
	ErrInvalidPassengerCount = errors.New("passenger count must be positive")
	ErrSeatPassengerMismatch = errors.New("seat and passenger counts differ")
	ErrEmptyCart             = errors.New("cart is empty")
)

// Promo codes
var (
	ErrPromoNotFound      = errors.New("promo code not found")
	ErrPromoInactive      = errors.New("promo code is not active")
	ErrPromoExpired       = errors.New("promo code is not valid at this time")
	ErrPromoExhausted     = errors.New("promo code usage limit reached")
	ErrPromoMinAmount     = errors.New("order amount is below the promo minimum")
	ErrPromoNotApplicable = errors.New("promo code does not apply to this trip")
)

// IsPromoRejection reports whether err is one of the promo validation outcomes
// that should be shown to the user rather than treated as a failure.
func IsPromoRejection(err error) bool {
	for _, target := range []error{
		ErrPromoNotFound, ErrPromoInactive, ErrPromoExpired,
		ErrPromoExhausted, ErrPromoMinAmount, ErrPromoNotApplicable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
