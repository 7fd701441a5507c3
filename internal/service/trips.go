package service

import (
	"context"
	"fmt"

	"busline/internal/cache"
	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
)

const (
	defaultTripsPageSize = 20
	maxTripsPageSize     = 100
)

type TripStore interface {
	GetByID(ctx context.Context, id string) (*models.Trip, error)
	List(ctx context.Context, filter repository.TripFilter) ([]models.Trip, error)
}

type BookedSeatsReader interface {
	BookedSeats(ctx context.Context, scheduleID string) ([]string, error)
}

type TripSearcher interface {
	Search(ctx context.Context, query, date string, page, pageSize int) ([]models.Trip, error)
}

type TripCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetTrips(ctx context.Context, key string, value any) error
}

// TripQuery is a listing request. Query switches to full-text search.
type TripQuery struct {
	Query       string
	Origin      string
	Destination string
	Date        string
	Page        int
	PageSize    int
}

type TripService struct {
	trips    TripStore
	seats    BookedSeatsReader
	searcher TripSearcher
	cache    TripCache
}

// NewTripService creates the service; searcher and cache are optional.
func NewTripService(trips TripStore, seats BookedSeatsReader, searcher TripSearcher, cache TripCache) *TripService {
	return &TripService{trips: trips, seats: seats, searcher: searcher, cache: cache}
}

func (s *TripService) List(ctx context.Context, q TripQuery) (*models.ListTripsResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultTripsPageSize
	}
	if q.PageSize > maxTripsPageSize {
		q.PageSize = maxTripsPageSize
	}

	response := &models.ListTripsResponse{Page: q.Page, PageSize: q.PageSize}

	if q.Query != "" && s.searcher != nil {
		trips, err := s.searcher.Search(ctx, q.Query, q.Date, q.Page, q.PageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to search trips: %w", err)
		}
		response.Trips = nonNilTrips(trips)
		return response, nil
	}

	cacheKey := ""
	if q.Page == 1 && s.cache != nil {
		cacheKey = cache.TripsListKey(q.Origin, q.Destination, q.Date, q.PageSize)
		var cached []models.Trip
		found, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.WithContext(ctx).Warn("Trips cache lookup failed", "error", err)
		} else if found {
			response.Trips = nonNilTrips(cached)
			return response, nil
		}
	}

	trips, err := s.trips.List(ctx, repository.TripFilter{
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.Date,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	response.Trips = nonNilTrips(trips)

	if cacheKey != "" {
		if err := s.cache.SetTrips(ctx, cacheKey, response.Trips); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache trips", "error", err)
		}
	}

	return response, nil
}

func (s *TripService) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip == nil {
		return nil, apperrors.ErrNotFound
	}
	return trip, nil
}

func (s *TripService) Seats(ctx context.Context, id string) (*models.TripSeatsResponse, error) {
	trip, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booked, err := s.seats.BookedSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked seats: %w", err)
	}

	available := trip.TotalSeats - len(booked)
	if available < 0 {
		available = 0
	}

	return &models.TripSeatsResponse{
		TripID:         trip.ID,
		TotalSeats:     trip.TotalSeats,
		BookedSeats:    booked,
		AvailableSeats: available,
	}, nil
}

func nonNilTrips(trips []models.Trip) []models.Trip {
	if trips == nil {
		return []models.Trip{}
	}
	return trips
}
