package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"busline/internal/auth"
	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/metrics"
	"busline/internal/models"
)

// AppSession is the server-side state of one device: its auth session,
// booking flow and cart.
type AppSession struct {
	ID    string
	Store *SessionStore
	Flow  *BookingFlow
	Cart  *Cart

	submitter *BookingSubmitter
	publisher EventPublisher
	startOnce sync.Once

	mu       sync.Mutex
	lastSeen time.Time
}

func (a *AppSession) touch(now time.Time) {
	a.mu.Lock()
	a.lastSeen = now
	a.mu.Unlock()
}

func (a *AppSession) idleSince() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeen
}

// Checkout submits the cart for the signed-in user and, on success,
// removes the submitted items from the cart.
func (a *AppSession) Checkout(ctx context.Context) ([]models.Booking, error) {
	identity := a.Store.Identity()
	if identity == nil {
		return nil, apperrors.ErrUnauthorized
	}

	items := a.Cart.Items()
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	bookings, err := a.submitter.CreateBookingsFromCart(ctx, identity.ID, items)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, item := range items {
		total += item.Amount
		a.Cart.Remove(item.ID)
	}

	if a.publisher != nil {
		ids := make([]string, len(bookings))
		for i, b := range bookings {
			ids[i] = b.ID
		}
		event := models.CartCheckedOutEvent{
			UserID:       identity.ID,
			AppSessionID: a.ID,
			BookingIDs:   ids,
			ItemCount:    len(items),
			Total:        total,
			Timestamp:    time.Now(),
		}
		if err := a.publisher.Publish(models.EventCartCheckedOut, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish cart checked out event",
				"error", err, "event_type", models.EventCartCheckedOut)
		}
	}

	logger.WithContext(ctx).Info("Cart checked out", "items", len(items), "bookings", len(bookings))
	return bookings, nil
}

func (a *AppSession) close() {
	a.Store.Close()
}

// AppSessionDeps are shared by every app session. Persister, Verifier and
// Publisher may be nil.
type AppSessionDeps struct {
	Provider  auth.Provider
	Persister auth.SessionPersister
	Verifier  *auth.TokenVerifier
	Loader    *ProfileLoader
	Promos    PromoValidator
	Submitter *BookingSubmitter
	Publisher EventPublisher
}

// AppSessionRegistry creates app sessions on first use and drops idle ones.
type AppSessionRegistry struct {
	deps AppSessionDeps
	cfg  SessionConfig
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*AppSession
}

func NewAppSessionRegistry(deps AppSessionDeps, cfg SessionConfig) *AppSessionRegistry {
	return &AppSessionRegistry{
		deps:     deps,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*AppSession),
	}
}

// NewID issues a fresh app session id.
func (r *AppSessionRegistry) NewID() string {
	return uuid.New().String()
}

// Get returns the app session for id, creating and bootstrapping it from
// the persisted auth session when it is not held in memory.
func (r *AppSessionRegistry) Get(ctx context.Context, id string) (*AppSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("app session id %q: %w", id, apperrors.ErrInvalidInput)
	}

	r.mu.Lock()
	sess, ok := r.sessions[id]
	if !ok {
		sess = r.newSession(id)
		r.sessions[id] = sess
		metrics.AppSessionsActive.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	sess.touch(r.now())
	sess.startOnce.Do(func() {
		sess.Store.Start(context.WithoutCancel(ctx))
	})
	return sess, nil
}

func (r *AppSessionRegistry) newSession(id string) *AppSession {
	client := auth.NewClient(id, r.deps.Provider, r.deps.Persister, r.deps.Verifier)
	flow := NewBookingFlow(r.deps.Promos)
	return &AppSession{
		ID:        id,
		Store:     NewSessionStore(client, r.deps.Loader, r.cfg),
		Flow:      flow,
		Cart:      NewCart(flow),
		submitter: r.deps.Submitter,
		publisher: r.deps.Publisher,
	}
}

// Sweep closes app sessions idle for longer than the configured TTL and
// returns how many were removed. The persisted auth session survives, so a
// returning device is signed in again on its next request.
func (r *AppSessionRegistry) Sweep(ctx context.Context) int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTTL)

	var expired []*AppSession
	r.mu.Lock()
	for id, sess := range r.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	metrics.AppSessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, sess := range expired {
		sess.close()
		logger.WithContext(ctx).Debug("App session expired", "app_session_id", sess.ID)
	}
	return len(expired)
}

func (r *AppSessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close tears down every app session.
func (r *AppSessionRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*AppSession)
	metrics.AppSessionsActive.Set(0)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}
