package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	authSessionPrefix = "auth:session:"
	tripsPrefix       = "trips:list:"
)

type Config struct {
	Addr          string
	Password      string
	DB            int
	SessionTTL    time.Duration
	TripsCacheTTL time.Duration
}

type ValkeyClient struct {
	client *redis.Client
	cfg    Config
}

func NewValkeyClient(ctx context.Context, cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{client: rdb, cfg: cfg}, nil
}

// NewWithClient wraps an existing go-redis client.
func NewWithClient(rdb *redis.Client, cfg Config) *ValkeyClient {
	return &ValkeyClient{client: rdb, cfg: cfg}
}

func AuthSessionKey(appSessionID string) string {
	return authSessionPrefix + appSessionID
}

// TripsListKey identifies a cached first page of an unfiltered or filtered listing.
func TripsListKey(origin, destination, date string, pageSize int) string {
	return fmt.Sprintf("%s%s|%s|%s|%d", tripsPrefix, origin, destination, date, pageSize)
}

// SaveSession stores the serialized auth session of an app session.
func (v *ValkeyClient) SaveSession(ctx context.Context, appSessionID string, payload []byte) error {
	if err := v.client.Set(ctx, AuthSessionKey(appSessionID), payload, v.cfg.SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

// LoadSession returns nil without error when nothing is stored.
func (v *ValkeyClient) LoadSession(ctx context.Context, appSessionID string) ([]byte, error) {
	payload, err := v.client.Get(ctx, AuthSessionKey(appSessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth session lookup error: %w", err)
	}
	return payload, nil
}

func (v *ValkeyClient) DeleteSession(ctx context.Context, appSessionID string) error {
	if err := v.client.Del(ctx, AuthSessionKey(appSessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete auth session: %w", err)
	}
	return nil
}

// GetJSON decodes a cached value into dest and reports whether it was found.
func (v *ValkeyClient) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache lookup error: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("invalid cached value for %s: %w", key, err)
	}
	return true, nil
}

// SetTrips caches a trips listing for the configured TTL.
func (v *ValkeyClient) SetTrips(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return v.client.Set(ctx, key, raw, v.cfg.TripsCacheTTL).Err()
}

// InvalidateTrips drops every cached trips listing.
func (v *ValkeyClient) InvalidateTrips(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := v.client.Scan(ctx, cursor, tripsPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan trips cache: %w", err)
		}
		if len(keys) > 0 {
			if err := v.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to invalidate trips cache: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
