package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"busline/internal/logger"
)

// Client holds the auth session of one app session and fans out
// auth-state changes to its listeners.
type Client struct {
	key       string
	provider  Provider
	persister SessionPersister
	verifier  *TokenVerifier
	now       func() time.Time

	mu        sync.Mutex
	session   *Session
	listeners map[int]Listener
	nextID    int
}

// NewClient creates a client. persister and verifier may be nil.
func NewClient(key string, provider Provider, persister SessionPersister, verifier *TokenVerifier) *Client {
	return &Client{
		key:       key,
		provider:  provider,
		persister: persister,
		verifier:  verifier,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// OnAuthStateChange registers l and returns a function that removes it.
func (c *Client) OnAuthStateChange(l Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) emit(ctx context.Context, event Event, session *Session) {
	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(ctx, event, session)
	}
}

// Initialize restores the persisted session and emits INITIAL_SESSION.
func (c *Client) Initialize(ctx context.Context) {
	session, err := c.GetSession(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to restore auth session", "error", err)
	}
	c.emit(ctx, EventInitialSession, session)
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	session, user, err := c.provider.SignUp(ctx, email, password, metadata)
	if err != nil {
		return nil, err
	}

	if session != nil {
		c.setSession(ctx, session)
		c.emit(ctx, EventSignedIn, session)
		if user == nil {
			user = &session.User
		}
	}
	return user, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.setSession(ctx, session)
	c.emit(ctx, EventSignedIn, session)
	return session, nil
}

// SignOut revokes the session at the provider and always forgets it locally.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	var err error
	if session != nil {
		err = c.provider.SignOut(ctx, session.AccessToken)
	}

	c.clearSession(ctx)
	c.emit(ctx, EventSignedOut, nil)
	return err
}

// GetSession returns the current session, restoring it from the persister
// and refreshing it when the access token has expired. It returns nil
// without error when nobody is signed in.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil && c.persister != nil {
		payload, err := c.persister.LoadSession(ctx, c.key)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			restored := &Session{}
			if err := json.Unmarshal(payload, restored); err != nil {
				return nil, fmt.Errorf("invalid persisted session: %w", err)
			}
			session = restored
			c.mu.Lock()
			c.session = restored
			c.mu.Unlock()
		}
	}

	if session == nil {
		return nil, nil
	}

	expired := session.Expired(c.now())
	if !expired {
		if _, err := c.verifier.Verify(session.AccessToken); err != nil {
			if !IsExpired(err) {
				c.clearSession(ctx)
				return nil, err
			}
			expired = true
		}
	}

	if expired {
		return c.RefreshSession(ctx)
	}
	return session, nil
}

// RefreshSession exchanges the refresh token for a new session. A failed
// refresh signs the client out.
func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()

	if current == nil || current.RefreshToken == "" {
		return nil, ErrNoSession
	}

	session, err := c.provider.RefreshSession(ctx, current.RefreshToken)
	if err != nil {
		c.clearSession(ctx)
		c.emit(ctx, EventSignedOut, nil)
		return nil, err
	}

	c.setSession(ctx, session)
	c.emit(ctx, EventTokenRefreshed, session)
	return session, nil
}

// ReloadUser fetches the principal again and emits USER_UPDATED.
func (c *Client) ReloadUser(ctx context.Context) (*User, error) {
	session, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}

	user, err := c.provider.GetUser(ctx, session.AccessToken)
	if err != nil {
		return nil, err
	}

	updated := *session
	updated.User = *user
	c.setSession(ctx, &updated)
	c.emit(ctx, EventUserUpdated, &updated)
	return user, nil
}

func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return c.provider.ResetPasswordForEmail(ctx, email, redirectTo)
}

func (c *Client) setSession(ctx context.Context, session *Session) {
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if c.persister == nil {
		return
	}
	payload, err := json.Marshal(session)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to marshal auth session", "error", err)
		return
	}
	if err := c.persister.SaveSession(ctx, c.key, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to persist auth session", "error", err)
	}
}

func (c *Client) clearSession(ctx context.Context) {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if c.persister == nil {
		return
	}
	if err := c.persister.DeleteSession(ctx, c.key); err != nil {
		logger.WithContext(ctx).Error("Failed to delete persisted auth session", "error", err)
	}
}
