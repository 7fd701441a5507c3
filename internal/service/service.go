package service

import (
	"busline/internal/auth"
	"busline/internal/repository"
)

type Services struct {
	Trips       *TripService
	Promos      *PromoService
	Bookings    *BookingService
	Submitter   *BookingSubmitter
	AppSessions *AppSessionRegistry
}

// Dependencies are the optional infrastructure clients; nil fields disable
// the matching feature.
type Dependencies struct {
	Provider  auth.Provider
	Persister auth.SessionPersister
	Verifier  *auth.TokenVerifier
	Publisher EventPublisher
	Searcher  TripSearcher
	Cache     TripCache
}

func NewServices(repos *repository.Repositories, deps Dependencies, cfg SessionConfig) *Services {
	tripService := NewTripService(repos.Trips, repos.Bookings, deps.Searcher, deps.Cache)
	promoService := NewPromoService(repos.Promos)
	submitter := NewBookingSubmitter(repos.Bookings, deps.Publisher, promoService)

	registry := NewAppSessionRegistry(AppSessionDeps{
		Provider:  deps.Provider,
		Persister: deps.Persister,
		Verifier:  deps.Verifier,
		Loader:    NewProfileLoader(repos.Profiles, repos.Roles),
		Promos:    promoService,
		Submitter: submitter,
		Publisher: deps.Publisher,
	}, cfg)

	return &Services{
		Trips:       tripService,
		Promos:      promoService,
		Bookings:    NewBookingService(repos.Bookings),
		Submitter:   submitter,
		AppSessions: registry,
	}
}
