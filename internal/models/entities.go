package models

import (
	"time"
)

// Profile is the public profile row created for every auth user
type Profile struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRole grants a role to a user
type UserRole struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	RoleLevel int       `json:"role_level" db:"role_level"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Route represents an origin/destination pair served by the operator
type Route struct {
	ID          string `json:"id" db:"id"`
	Origin      string `json:"origin" db:"origin"`
	Destination string `json:"destination" db:"destination"`
	DistanceKm  *int   `json:"distance_km" db:"distance_km"`
	DurationMin *int   `json:"duration_min" db:"duration_min"`
}

// Bus represents a vehicle of the fleet
type Bus struct {
	ID          string `json:"id" db:"id"`
	PlateNumber string `json:"plate_number" db:"plate_number"`
	Model       string `json:"model" db:"model"`
	Capacity    int    `json:"capacity" db:"capacity"`
}

// Trip is a schedule row joined with its route and bus
type Trip struct {
	ID             string     `json:"id" db:"id"`
	RouteID        string     `json:"route_id" db:"route_id"`
	BusID          string     `json:"bus_id" db:"bus_id"`
	Origin         string     `json:"origin" db:"origin"`
	Destination    string     `json:"destination" db:"destination"`
	DepartureTime  time.Time  `json:"departure_time" db:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time" db:"arrival_time"`
	Fare           float64    `json:"fare" db:"fare"`
	TotalSeats     int        `json:"total_seats" db:"capacity"`
	AvailableSeats int        `json:"available_seats" db:"available_seats"`
	BusPlate       string     `json:"bus_plate" db:"plate_number"`
	BusModel       string     `json:"bus_model" db:"model"`
	Status         string     `json:"status" db:"status"`
}

// Booking statuses
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking is one persisted seat reservation for one passenger
type Booking struct {
	ID                string    `json:"id" db:"id"`
	ScheduleID        string    `json:"schedule_id" db:"schedule_id"`
	UserID            string    `json:"user_id" db:"user_id"`
	PassengerName     string    `json:"passenger_name" db:"passenger_name"`
	PassengerPhone    *string   `json:"passenger_phone" db:"passenger_phone"`
	PassengerIDNumber string    `json:"passenger_id_number" db:"passenger_id_number"`
	PassengerGender   string    `json:"passenger_gender" db:"passenger_gender"`
	NextOfKin         string    `json:"next_of_kin" db:"next_of_kin"`
	SeatNumber        string    `json:"seat_number" db:"seat_number"`
	TotalAmount       float64   `json:"total_amount" db:"total_amount"`
	DiscountAmount    float64   `json:"discount_amount" db:"discount_amount"`
	PromoCode         *string   `json:"promo_code" db:"promo_code"`
	Status            string    `json:"status" db:"status"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Promo discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode represents a redeemable discount code
type PromoCode struct {
	ID            int64      `json:"id" db:"id"`
	Code          string     `json:"code" db:"code"`
	DiscountType  string     `json:"discount_type" db:"discount_type"`
	DiscountValue float64    `json:"discount_value" db:"discount_value"`
	MaxDiscount   *float64   `json:"max_discount" db:"max_discount"`
	MinAmount     float64    `json:"min_amount" db:"min_amount"`
	UsageLimit    *int       `json:"usage_limit" db:"usage_limit"`
	UsedCount     int        `json:"used_count" db:"used_count"`
	ScheduleID    *string    `json:"schedule_id" db:"schedule_id"`
	ValidFrom     *time.Time `json:"valid_from" db:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until" db:"valid_until"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
