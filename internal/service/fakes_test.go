package service

import (
	"context"
	"errors"
	"sync"

	"busline/internal/auth"
	"busline/internal/models"
	"busline/internal/repository"
)

type fakeProfiles struct {
	mu      sync.Mutex
	profile *models.Profile
	err     error
	release chan struct{}
	calls   int
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return f.profile, f.err
}

func (f *fakeProfiles) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRoles struct {
	roles []models.UserRole
	err   error
}

func (f *fakeRoles) ListActiveByUserID(ctx context.Context, userID string) ([]models.UserRole, error) {
	return f.roles, f.err
}

type fakeProvider struct {
	mu            sync.Mutex
	session       *auth.Session
	signInErr     error
	signUpErr     error
	signOutErr    error
	signUpSession bool
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*auth.Session, *auth.User, error) {
	if f.signUpErr != nil {
		return nil, nil, f.signUpErr
	}
	user := &auth.User{ID: "u1", Email: email, UserMetadata: metadata}
	if f.signUpSession {
		return &auth.Session{AccessToken: "at", RefreshToken: "rt", User: *user}, user, nil
	}
	return nil, user, nil
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &auth.Session{AccessToken: "at", RefreshToken: "rt", User: auth.User{ID: "u1", Email: email}}, nil
}

func (f *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	return f.signOutErr
}

func (f *fakeProvider) GetUser(ctx context.Context, accessToken string) (*auth.User, error) {
	return &auth.User{ID: "u1", Email: "ada@example.com"}, nil
}

func (f *fakeProvider) RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error) {
	return &auth.Session{AccessToken: "at2", RefreshToken: "rt2", User: auth.User{ID: "u1", Email: "ada@example.com"}}, nil
}

func (f *fakeProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return nil
}

type memPersister struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemPersister() *memPersister { return &memPersister{data: map[string][]byte{}} }

func (m *memPersister) SaveSession(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
	return nil
}

func (m *memPersister) LoadSession(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memPersister) DeleteSession(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeValidator struct {
	result *models.PromoResult
	err    error
	calls  []validateCall
}

type validateCall struct {
	code   string
	tripID string
	amount float64
}

func (f *fakeValidator) Validate(ctx context.Context, code, tripID string, amount float64) (*models.PromoResult, error) {
	f.calls = append(f.calls, validateCall{code, tripID, amount})
	return f.result, f.err
}

type fakeBookings struct {
	mu      sync.Mutex
	created []models.Booking
	failAt  int
	err     error
	byID    map[string]*models.Booking
}

func (f *fakeBookings) Create(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil && len(f.created) == f.failAt {
		return f.err
	}
	booking.ID = "b" + string(rune('1'+len(f.created)))
	f.created = append(f.created, *booking)
	return nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return f.byID[id], nil
}

func (f *fakeBookings) GetByUserID(ctx context.Context, userID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.created {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) BookedSeats(ctx context.Context, scheduleID string) ([]string, error) {
	seats := []string{}
	for _, b := range f.created {
		if b.ScheduleID == scheduleID {
			seats = append(seats, b.SeatNumber)
		}
	}
	return seats, nil
}

type publishedMessage struct {
	subject string
	data    interface{}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) Publish(subject string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{subject, data})
	return f.err
}

func (f *fakePublisher) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.subject
	}
	return out
}

type fakeUsage struct {
	codes []string
	err   error
}

func (f *fakeUsage) RecordUsage(ctx context.Context, code string) error {
	f.codes = append(f.codes, code)
	return f.err
}

type fakePromoStore struct {
	promo       *models.PromoCode
	err         error
	created     *models.PromoCode
	incremented bool
}

func (f *fakePromoStore) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	return f.promo, f.err
}

func (f *fakePromoStore) Create(ctx context.Context, promo *models.PromoCode) error {
	promo.ID = 7
	f.created = promo
	return f.err
}

func (f *fakePromoStore) IncrementUsage(ctx context.Context, code string) (bool, error) {
	return f.incremented, f.err
}

type fakeTrips struct {
	trips     map[string]*models.Trip
	listed    []models.Trip
	listCalls int
	lastQuery repository.TripFilter
}

func (f *fakeTrips) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	return f.trips[id], nil
}

func (f *fakeTrips) List(ctx context.Context, filter repository.TripFilter) ([]models.Trip, error) {
	f.listCalls++
	f.lastQuery = filter
	return f.listed, nil
}

var errBoom = errors.New("boom")
