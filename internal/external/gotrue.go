package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"busline/internal/auth"
)

// AuthClient talks to a GoTrue-compatible hosted auth service.
type AuthClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type AuthConfig struct {
	BaseURL   string
	APIKey    string
	JWTSecret string
	Timeout   time.Duration
}

// AuthError carries the provider's message unchanged.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

type credentialsRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

var _ auth.Provider = (*AuthClient)(nil)

func NewAuthClient(cfg AuthConfig) *AuthClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &AuthClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (ac *AuthClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*auth.Session, *auth.User, error) {
	var result struct {
		auth.Session
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		UserMetadata map[string]any `json:"user_metadata"`
	}

	body := credentialsRequest{Email: email, Password: password, Data: metadata}
	if err := ac.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &result); err != nil {
		return nil, nil, err
	}

	// With email confirmation enabled the provider answers with the bare user.
	if result.AccessToken == "" {
		return nil, &auth.User{ID: result.ID, Email: result.Email, UserMetadata: result.UserMetadata}, nil
	}

	session := result.Session
	return &session, &session.User, nil
}

func (ac *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	var session auth.Session
	body := credentialsRequest{Email: email, Password: password}
	if err := ac.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (ac *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	return ac.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (ac *AuthClient) GetUser(ctx context.Context, accessToken string) (*auth.User, error) {
	var user auth.User
	if err := ac.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (ac *AuthClient) RefreshSession(ctx context.Context, refreshToken string) (*auth.Session, error) {
	var session auth.Session
	body := refreshRequest{RefreshToken: refreshToken}
	if err := ac.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (ac *AuthClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return ac.do(ctx, http.MethodPost, path, "", recoverRequest{Email: email}, nil)
}

func (ac *AuthClient) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, ac.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", ac.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else if ac.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+ac.apiKey)
	}

	resp, err := ac.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAuthError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseAuthError(resp *http.Response) error {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &payload)

	authErr := &AuthError{Status: resp.StatusCode, Code: payload.ErrorCode}
	switch {
	case payload.ErrorDescription != "":
		authErr.Message = payload.ErrorDescription
	case payload.Msg != "":
		authErr.Message = payload.Msg
	case payload.Message != "":
		authErr.Message = payload.Message
	case payload.Error != "":
		authErr.Message = payload.Error
	default:
		authErr.Message = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	}
	if authErr.Code == "" {
		authErr.Code = payload.Error
	}
	return authErr
}
