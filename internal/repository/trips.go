package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"busline/internal/database"
	"busline/internal/models"
)

type TripRepository struct {
	db *database.DB
}

func NewTripRepository(db *database.DB) *TripRepository {
	return &TripRepository{db: db}
}

// TripFilter narrows a schedule listing
type TripFilter struct {
	Origin      string
	Destination string
	Date        string
	Page        int
	PageSize    int
}

const tripSelect = `
		SELECT s.id, s.route_id, s.bus_id, r.origin, r.destination, s.departure_time,
		       s.arrival_time, s.fare, b.capacity, s.available_seats, b.plate_number, b.model, s.status
		FROM schedules s
		JOIN routes r ON r.id = s.route_id
		JOIN buses b ON b.id = s.bus_id`

func scanTrip(row interface{ Scan(...any) error }, trip *models.Trip) error {
	return row.Scan(
		&trip.ID,
		&trip.RouteID,
		&trip.BusID,
		&trip.Origin,
		&trip.Destination,
		&trip.DepartureTime,
		&trip.ArrivalTime,
		&trip.Fare,
		&trip.TotalSeats,
		&trip.AvailableSeats,
		&trip.BusPlate,
		&trip.BusModel,
		&trip.Status,
	)
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	trip := &models.Trip{}
	err := scanTrip(r.db.QueryRowContext(ctx, tripSelect+` WHERE s.id = $1`, id), trip)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return trip, err
}

func (r *TripRepository) List(ctx context.Context, filter TripFilter) ([]models.Trip, error) {
	var args []interface{}
	argIndex := 1

	sqlQuery := tripSelect + ` WHERE s.status = 'scheduled'`

	if filter.Origin != "" {
		sqlQuery += fmt.Sprintf(" AND r.origin ILIKE $%d", argIndex)
		args = append(args, filter.Origin)
		argIndex++
	}

	if filter.Destination != "" {
		sqlQuery += fmt.Sprintf(" AND r.destination ILIKE $%d", argIndex)
		args = append(args, filter.Destination)
		argIndex++
	}

	if filter.Date != "" {
		sqlQuery += fmt.Sprintf(" AND DATE(s.departure_time) = $%d", argIndex)
		args = append(args, filter.Date)
		argIndex++
	}

	sqlQuery += " ORDER BY s.departure_time ASC, s.id ASC"

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		sqlQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.PageSize, offset)
	}

	return r.query(ctx, sqlQuery, args...)
}

// ListAll returns every schedule regardless of status, for reindexing.
func (r *TripRepository) ListAll(ctx context.Context) ([]models.Trip, error) {
	return r.query(ctx, tripSelect+` ORDER BY s.departure_time ASC`)
}

func (r *TripRepository) query(ctx context.Context, sqlQuery string, args ...interface{}) ([]models.Trip, error) {
	var trips []models.Trip

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var trip models.Trip
		if err := scanTrip(rows, &trip); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// RecountAvailableSeats recomputes available_seats from confirmed bookings
// and returns the new value.
func (r *TripRepository) RecountAvailableSeats(ctx context.Context, scheduleID string) (int, error) {
	query := `
		UPDATE schedules s
		SET available_seats = b.capacity - (
			SELECT COUNT(*) FROM bookings bk
			WHERE bk.schedule_id = s.id AND bk.status = 'confirmed'
		)
		FROM buses b
		WHERE b.id = s.bus_id AND s.id = $1
		RETURNING s.available_seats`

	var available int
	err := r.db.QueryRowContext(ctx, query, scheduleID).Scan(&available)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return available, err
}

func (r *TripRepository) CreateRoute(ctx context.Context, route *models.Route) error {
	query := `
		INSERT INTO routes (origin, destination, distance_km, duration_min)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (origin, destination) DO UPDATE SET distance_km = EXCLUDED.distance_km
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		route.Origin, route.Destination, route.DistanceKm, route.DurationMin,
	).Scan(&route.ID)
}

func (r *TripRepository) CreateBus(ctx context.Context, bus *models.Bus) error {
	query := `
		INSERT INTO buses (plate_number, model, capacity)
		VALUES ($1, $2, $3)
		ON CONFLICT (plate_number) DO UPDATE SET model = EXCLUDED.model
		RETURNING id`

	return r.db.QueryRowContext(ctx, query, bus.PlateNumber, bus.Model, bus.Capacity).Scan(&bus.ID)
}

// CreateSchedules inserts departures for one route and bus in a single transaction.
func (r *TripRepository) CreateSchedules(ctx context.Context, routeID string, bus models.Bus, departures []time.Time, duration time.Duration, fare float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO schedules (route_id, bus_id, departure_time, arrival_time, fare, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, dep := range departures {
		if _, err := tx.ExecContext(ctx, query, routeID, bus.ID, dep, dep.Add(duration), fare, bus.Capacity); err != nil {
			return err
		}
	}

	return tx.Commit()
}
