package service

import (
	"context"
	"sync"
	"time"

	"busline/internal/auth"
	"busline/internal/logger"
	"busline/internal/metrics"
	"busline/internal/models"
)

const (
	DefaultProfileLoadTimeout = 10 * time.Second
	DefaultSignUpSettleDelay  = time.Second
)

type SessionConfig struct {
	ProfileLoadTimeout time.Duration
	SignUpSettleDelay  time.Duration
	IdleTTL            time.Duration
	SweepInterval      time.Duration
}

// AuthClient is the per-device auth session. *auth.Client implements it.
type AuthClient interface {
	Initialize(ctx context.Context)
	OnAuthStateChange(l auth.Listener) func()
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*auth.User, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*auth.Session, error)
	RefreshSession(ctx context.Context) (*auth.Session, error)
	ReloadUser(ctx context.Context) (*auth.User, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

// SessionStore holds the signed-in Identity of one app session.
type SessionStore struct {
	client AuthClient
	loader *ProfileLoader
	cfg    SessionConfig

	mu          sync.Mutex
	identity    *models.Identity
	loading     bool
	loadGen     uint64
	unsubscribe func()
}

func NewSessionStore(client AuthClient, loader *ProfileLoader, cfg SessionConfig) *SessionStore {
	if cfg.ProfileLoadTimeout <= 0 {
		cfg.ProfileLoadTimeout = DefaultProfileLoadTimeout
	}
	if cfg.SignUpSettleDelay < 0 {
		cfg.SignUpSettleDelay = DefaultSignUpSettleDelay
	}
	return &SessionStore{client: client, loader: loader, cfg: cfg}
}

// Start subscribes to auth-state changes and restores the persisted session.
// Calling it again has no effect.
func (s *SessionStore) Start(ctx context.Context) {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.unsubscribe = s.client.OnAuthStateChange(s.handleAuthEvent)
	s.mu.Unlock()

	s.client.Initialize(ctx)
}

// Close removes the auth-state subscription.
func (s *SessionStore) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Identity returns the current identity or nil when signed out.
func (s *SessionStore) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionStore) handleAuthEvent(ctx context.Context, event auth.Event, session *auth.Session) {
	action := DecideAuthAction(event, session != nil)
	logger.WithContext(ctx).Debug("Auth state changed", "event", event, "action", action.String())

	switch action {
	case ActionClear:
		s.setIdentity(nil)
	case ActionLoadProfile:
		gen, ok := s.beginLoad(false)
		if !ok {
			return
		}
		user := session.User
		s.finishLoad(gen, s.loadWithFallback(ctx, &user))
	}
}

// SignUp registers the user, waits for the profile row to be created by
// backend triggers and loads it. The returned error is for display only.
func (s *SessionStore) SignUp(ctx context.Context, email, password, fullName, phone string) error {
	metadata := map[string]any{"full_name": fullName}
	if phone != "" {
		metadata["phone"] = phone
	}

	user, err := s.client.SignUp(ctx, email, password, metadata)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	select {
	case <-time.After(s.cfg.SignUpSettleDelay):
	case <-ctx.Done():
		return nil
	}

	gen, _ := s.beginLoad(true)
	s.finishLoad(gen, s.loadWithFallback(ctx, user))
	return nil
}

// SignIn authenticates and races the profile load against the configured
// timeout. A profile that arrives after the timeout is discarded; the
// sign-in itself still succeeds.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	session, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	gen, _ := s.beginLoad(true)
	user := session.User
	result := make(chan *models.Identity, 1)
	loadCtx := context.WithoutCancel(ctx)
	go func() {
		result <- s.loadWithFallback(loadCtx, &user)
	}()

	timer := time.NewTimer(s.cfg.ProfileLoadTimeout)
	defer timer.Stop()

	select {
	case identity := <-result:
		s.finishLoad(gen, identity)
	case <-timer.C:
		metrics.ProfileLoadTimeoutsTotal.Inc()
		logger.WithContext(ctx).Warn("Profile load timed out after sign-in",
			"user_id", user.ID, "timeout", s.cfg.ProfileLoadTimeout)
		go s.discardLate(gen, result)
	case <-ctx.Done():
		go s.discardLate(gen, result)
	}

	return s.Identity(), nil
}

// SignOut always clears the identity, even when the provider call fails.
func (s *SessionStore) SignOut(ctx context.Context) error {
	err := s.client.SignOut(ctx)
	s.setIdentity(nil)
	return err
}

func (s *SessionStore) ResetPassword(ctx context.Context, email, redirectTo string) error {
	return s.client.ResetPasswordForEmail(ctx, email, redirectTo)
}

func (s *SessionStore) RefreshSession(ctx context.Context) error {
	_, err := s.client.RefreshSession(ctx)
	return err
}

// ReloadUser re-reads the principal; the resulting USER_UPDATED event
// reloads the profile.
func (s *SessionStore) ReloadUser(ctx context.Context) (*models.Identity, error) {
	if _, err := s.client.ReloadUser(ctx); err != nil {
		return nil, err
	}
	return s.Identity(), nil
}

// Session exposes the underlying auth session, refreshing it if needed.
func (s *SessionStore) Session(ctx context.Context) (*auth.Session, error) {
	return s.client.GetSession(ctx)
}

func (s *SessionStore) loadWithFallback(ctx context.Context, user *auth.User) *models.Identity {
	identity, err := s.loader.Load(ctx, user)
	if err != nil {
		metrics.ProfileLoadFailuresTotal.Inc()
		logger.WithContext(ctx).Warn("Profile load failed, using minimal identity",
			"error", err, "user_id", user.ID)
		return MinimalIdentity(user)
	}
	return identity
}

// beginLoad marks a load as running and returns its generation. Unless
// force is set it refuses when another load is already in flight.
func (s *SessionStore) beginLoad(force bool) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading && !force {
		return 0, false
	}
	s.loadGen++
	s.loading = true
	return s.loadGen, true
}

// finishLoad stores the identity. Only the latest load clears the flag.
func (s *SessionStore) finishLoad(gen uint64, identity *models.Identity) {
	s.mu.Lock()
	s.identity = identity
	if gen == s.loadGen {
		s.loading = false
	}
	s.mu.Unlock()
}

func (s *SessionStore) discardLate(gen uint64, result <-chan *models.Identity) {
	<-result
	s.mu.Lock()
	if gen == s.loadGen {
		s.loading = false
	}
	s.mu.Unlock()
}

func (s *SessionStore) setIdentity(identity *models.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
}
