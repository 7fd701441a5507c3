package repository

import (
	"busline/internal/database"
)

type Repositories struct {
	Profiles *ProfileRepository
	Roles    *RoleRepository
	Trips    *TripRepository
	Bookings *BookingRepository
	Promos   *PromoRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Profiles: NewProfileRepository(db),
		Roles:    NewRoleRepository(db),
		Trips:    NewTripRepository(db),
		Bookings: NewBookingRepository(db),
		Promos:   NewPromoRepository(db),
	}
}
