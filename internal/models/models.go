package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool - гибкий boolean тип, поддерживающий строки и числа
type FlexibleBool bool

// UnmarshalJSON поддерживает парсинг boolean из строки, числа и boolean
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	// Убираем кавычки
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

// Bool возвращает bool значение
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// Identity is the display-ready user record held by a session store
type Identity struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Profile IdentityProfile `json:"profile"`
	Roles   []IdentityRole  `json:"roles"`
}

type IdentityProfile struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

type IdentityRole struct {
	Role      string `json:"role"`
	RoleLevel int    `json:"role_level"`
}

// HasRole reports whether the identity holds role
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// PassengerInfo holds the details entered for one seat
type PassengerInfo struct {
	FullName  string `json:"full_name" binding:"required"`
	Phone     string `json:"phone,omitempty"`
	IDNumber  string `json:"id_number"`
	Gender    string `json:"gender"`
	NextOfKin string `json:"next_of_kin"`
}

// BookingFlow is the in-progress selection for a single prospective booking
type BookingFlow struct {
	Trip             *Trip           `json:"trip"`
	PassengerCount   int             `json:"passenger_count"`
	SelectedSeats    []string        `json:"selected_seats"`
	PassengerDetails []PassengerInfo `json:"passenger_details"`
	TotalAmount      float64         `json:"total_amount"`
	PromoCode        *string         `json:"promo_code"`
	DiscountAmount   float64         `json:"discount_amount"`
}

// CartItem is an immutable snapshot of a completed booking flow
type CartItem struct {
	ID             string          `json:"id"`
	Trip           Trip            `json:"trip"`
	Seats          []string        `json:"seats"`
	Passengers     []PassengerInfo `json:"passengers"`
	Amount         float64         `json:"amount"`
	DiscountAmount float64         `json:"discount_amount"`
	PromoCode      *string         `json:"promo_code"`
	AddedAt        time.Time       `json:"added_at"`
}

// PromoResult is the outcome of a successful promo validation
type PromoResult struct {
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

// AppSessionResponse - ответ при создании сессии устройства
type AppSessionResponse struct {
	ID string `json:"id"`
}

// SignUpRequest - модель для регистрации
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// SignInRequest - модель для входа
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResetPasswordRequest - запрос на сброс пароля
type ResetPasswordRequest struct {
	Email      string `json:"email" binding:"required,email"`
	RedirectTo string `json:"redirect_to"`
}

// AuthResponse - ответ auth эндпоинтов
type AuthResponse struct {
	User *Identity `json:"user"`
}

// ListTripsResponse - список рейсов
type ListTripsResponse struct {
	Trips    []Trip `json:"trips"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// TripSeatsResponse - занятые места рейса
type TripSeatsResponse struct {
	TripID         string   `json:"trip_id"`
	TotalSeats     int      `json:"total_seats"`
	BookedSeats    []string `json:"booked_seats"`
	AvailableSeats int      `json:"available_seats"`
}

// StartBookingRequest - начало бронирования
type StartBookingRequest struct {
	TripID         string `json:"trip_id" binding:"required,uuid"`
	PassengerCount int    `json:"passenger_count" binding:"required,min=1"`
}

// UpdateSeatsRequest - выбор мест
type UpdateSeatsRequest struct {
	Seats []string `json:"seats"`
}

// UpdatePassengersRequest - данные пассажиров
type UpdatePassengersRequest struct {
	Passengers []PassengerInfo `json:"passengers" binding:"dive"`
}

// ApplyPromoRequest - применение промокода
type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyPromoResponse reports the promo outcome as a value
type ApplyPromoResponse struct {
	Success  bool    `json:"success"`
	Discount float64 `json:"discount,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// CartResponse - содержимое корзины
type CartResponse struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// CheckoutResponse - результат оформления корзины
type CheckoutResponse struct {
	Bookings []Booking `json:"bookings"`
	Count    int       `json:"count"`
}

// CreatePromoRequest - создание промокода администратором
type CreatePromoRequest struct {
	Code          string        `json:"code" binding:"required"`
	DiscountType  string        `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue float64       `json:"discount_value" binding:"required,gt=0"`
	MaxDiscount   *float64      `json:"max_discount"`
	MinAmount     float64       `json:"min_amount"`
	UsageLimit    *int          `json:"usage_limit"`
	ScheduleID    *string       `json:"schedule_id" binding:"omitempty,uuid"`
	ValidFrom     *time.Time    `json:"valid_from"`
	ValidUntil    *time.Time    `json:"valid_until"`
	IsActive      *FlexibleBool `json:"is_active"`
}
