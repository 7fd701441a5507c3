package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/internal/database"
	"busline/internal/models"
)

func newMock(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return database.Wrap(sqlDB), mock
}

func TestProfileGetByID(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM profiles").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "phone", "created_at", "updated_at"}).
			AddRow("u1", "Ada Obi", "+2348000000000", now, now))

	profile, err := NewProfileRepository(db).GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ada Obi", profile.FullName)
	assert.Equal(t, "+2348000000000", pointer.GetString(profile.Phone))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM profiles").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	profile, err := NewProfileRepository(db).GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestRolesListActive(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM user_roles").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "role_level", "is_active", "created_at"}).
			AddRow(1, "u1", "admin", 10, true, now).
			AddRow(2, "u1", "customer", 1, true, now))

	roles, err := NewRoleRepository(db).ListActiveByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].Role)
	assert.Equal(t, 10, roles[0].RoleLevel)
}

func tripRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "route_id", "bus_id", "origin", "destination", "departure_time",
		"arrival_time", "fare", "capacity", "available_seats", "plate_number", "model", "status",
	})
}

func TestTripListAppliesFilters(t *testing.T) {
	db, mock := newMock(t)
	dep := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`r\.origin ILIKE \$1 AND r\.destination ILIKE \$2 AND DATE\(s\.departure_time\) = \$3 ORDER BY .* LIMIT \$4 OFFSET \$5`).
		WithArgs("Lagos", "Abuja", "2026-03-01", 20, 20).
		WillReturnRows(tripRows().AddRow("t1", "r1", "b1", "Lagos", "Abuja", dep, nil, 15000.0, 40, 38, "LAG-001", "Sprinter", "scheduled"))

	trips, err := NewTripRepository(db).List(context.Background(), TripFilter{
		Origin: "Lagos", Destination: "Abuja", Date: "2026-03-01", Page: 2, PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 15000.0, trips[0].Fare)
	assert.Equal(t, 40, trips[0].TotalSeats)
	assert.Nil(t, trips[0].ArrivalTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM schedules s").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	trip, err := NewTripRepository(db).GetByID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, trip)
}

func TestTripRecountAvailableSeats(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("UPDATE schedules s").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats"}).AddRow(37))

	available, err := NewTripRepository(db).RecountAvailableSeats(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 37, available)
}

func TestBookingCreate(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	booking := &models.Booking{
		ScheduleID:     "t1",
		UserID:         "u1",
		PassengerName:  "Ada",
		SeatNumber:     "A1",
		TotalAmount:    100,
		DiscountAmount: 10,
		PromoCode:      pointer.ToString("SAVE10"),
		Status:         models.BookingStatusConfirmed,
	}

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("t1", "u1", "Ada", nil, "", "", "", "A1", 100.0, 10.0, "SAVE10", models.BookingStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("b1", now))

	require.NoError(t, NewBookingRepository(db).Create(context.Background(), booking))
	assert.Equal(t, "b1", booking.ID)
	assert.Equal(t, now, booking.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO bookings").WillReturnError(errors.New("duplicate key"))

	err := NewBookingRepository(db).Create(context.Background(), &models.Booking{})
	assert.EqualError(t, err, "duplicate key")
}

func TestBookedSeats(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT seat_number").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow("A1").AddRow("A2"))

	seats, err := NewBookingRepository(db).BookedSeats(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, seats)
}

func TestBookedSeatsEmptyIsNotNil(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT seat_number").WithArgs("t1").WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))

	seats, err := NewBookingRepository(db).BookedSeats(context.Background(), "t1")
	require.NoError(t, err)
	assert.NotNil(t, seats)
	assert.Empty(t, seats)
}

func TestPromoIncrementUsage(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("UPDATE promo_codes").WithArgs("SAVE10").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE promo_codes").WithArgs("SAVE10").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPromoRepository(db)
	ok, err := repo.IncrementUsage(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementUsage(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromoGetByCode(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM promo_codes").
		WithArgs("save10").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "discount_type", "discount_value", "max_discount", "min_amount", "usage_limit",
			"used_count", "schedule_id", "valid_from", "valid_until", "is_active", "created_at",
		}).AddRow(1, "SAVE10", "percentage", 10.0, 50.0, 0.0, 100, 3, nil, nil, nil, true, now))

	promo, err := NewPromoRepository(db).GetByCode(context.Background(), "save10")
	require.NoError(t, err)
	require.NotNil(t, promo)
	assert.Equal(t, "SAVE10", promo.Code)
	assert.Equal(t, 50.0, pointer.GetFloat64(promo.MaxDiscount))
	assert.Equal(t, 100, pointer.GetInt(promo.UsageLimit))
	assert.Nil(t, promo.ScheduleID)
}
