package repository

import (
	"context"
	"database/sql"

	"busline/internal/database"
	"busline/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, schedule_id, user_id, passenger_name, passenger_phone, passenger_id_number,
		       passenger_gender, next_of_kin, seat_number, total_amount, discount_amount, promo_code,
		       status, created_at`

func scanBooking(row interface{ Scan(...any) error }, booking *models.Booking) error {
	return row.Scan(
		&booking.ID,
		&booking.ScheduleID,
		&booking.UserID,
		&booking.PassengerName,
		&booking.PassengerPhone,
		&booking.PassengerIDNumber,
		&booking.PassengerGender,
		&booking.NextOfKin,
		&booking.SeatNumber,
		&booking.TotalAmount,
		&booking.DiscountAmount,
		&booking.PromoCode,
		&booking.Status,
		&booking.CreatedAt,
	)
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (schedule_id, user_id, passenger_name, passenger_phone, passenger_id_number,
		                      passenger_gender, next_of_kin, seat_number, total_amount, discount_amount,
		                      promo_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		booking.ScheduleID,
		booking.UserID,
		booking.PassengerName,
		booking.PassengerPhone,
		booking.PassengerIDNumber,
		booking.PassengerGender,
		booking.NextOfKin,
		booking.SeatNumber,
		booking.TotalAmount,
		booking.DiscountAmount,
		booking.PromoCode,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1`

	err := scanBooking(r.db.QueryRowContext(ctx, query, id), booking)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// BookedSeats returns the seat numbers held by confirmed bookings of a schedule.
func (r *BookingRepository) BookedSeats(ctx context.Context, scheduleID string) ([]string, error) {
	seats := []string{}
	query := `
		SELECT seat_number
		FROM bookings
		WHERE schedule_id = $1 AND status = 'confirmed'
		ORDER BY seat_number`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}
