package auth

import (
	"context"
	"errors"
	"time"
)

// Event is an auth-state change notification.
type Event string

const (
	EventInitialSession   Event = "INITIAL_SESSION"
	EventSignedIn         Event = "SIGNED_IN"
	EventSignedOut        Event = "SIGNED_OUT"
	EventTokenRefreshed   Event = "TOKEN_REFRESHED"
	EventUserUpdated      Event = "USER_UPDATED"
	EventPasswordRecovery Event = "PASSWORD_RECOVERY"
)

var (
	ErrNoSession    = errors.New("no active session")
	ErrInvalidToken = errors.New("access token is invalid")
)

// User is the principal as known to the auth provider.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is a provider-issued token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Expired reports whether the access token is at or within 10 seconds of expiry.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt-10
}

// Provider is the hosted auth service.
type Provider interface {
	// SignUp returns a nil session when the provider requires email confirmation.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, *User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

// SessionPersister stores serialized sessions keyed by app session id.
type SessionPersister interface {
	SaveSession(ctx context.Context, key string, payload []byte) error
	LoadSession(ctx context.Context, key string) ([]byte, error)
	DeleteSession(ctx context.Context, key string) error
}

// Listener receives auth-state changes. session is nil when signed out.
type Listener func(ctx context.Context, event Event, session *Session)
