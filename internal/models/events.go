package models

import "time"

// NATS Event Types
const (
	EventBookingCreated = "booking.created"
	EventCartCheckedOut = "cart.checked_out"
)

// BookingCreatedEvent is published once per persisted booking
type BookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	ScheduleID string    `json:"schedule_id"`
	UserID     string    `json:"user_id"`
	SeatNumber string    `json:"seat_number"`
	Timestamp  time.Time `json:"timestamp"`
}

// CartCheckedOutEvent is published after a cart was fully submitted
type CartCheckedOutEvent struct {
	UserID       string    `json:"user_id"`
	AppSessionID string    `json:"app_session_id"`
	BookingIDs   []string  `json:"booking_ids"`
	ItemCount    int       `json:"item_count"`
	Total        float64   `json:"total"`
	Timestamp    time.Time `json:"timestamp"`
}
