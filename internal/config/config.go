package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"busline/internal/cache"
	"busline/internal/database"
	"busline/internal/external"
	"busline/internal/messaging"
	"busline/internal/service"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	AllowedOrigins []string

	// Performance monitoring
	MetricsEnabled bool

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch ElasticsearchConfig
	Auth          external.AuthConfig
	Session       service.SessionConfig
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		MetricsEnabled: getEnv("METRICS_ENABLED", "true") == "true",

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "busline"),
			Password:           getEnv("DB_PASSWORD", "busline"),
			DBName:             getEnv("DB_NAME", "busline"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "busline"),
			ClientID:  getEnv("NATS_CLIENT_ID", "busline-api"),
		},

		Valkey: cache.Config{
			Addr:          getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:      getEnv("VALKEY_PASSWORD", ""),
			DB:            getEnvInt("VALKEY_DB", 0),
			SessionTTL:    getEnvDuration("VALKEY_SESSION_TTL", 7*24*time.Hour),
			TripsCacheTTL: getEnvDuration("VALKEY_TRIPS_TTL", 60*time.Second),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Auth: external.AuthConfig{
			BaseURL:   getEnv("AUTH_URL", "http://localhost:9999"),
			APIKey:    getEnv("AUTH_API_KEY", ""),
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			Timeout:   getEnvDuration("AUTH_TIMEOUT", 15*time.Second),
		},

		Session: service.SessionConfig{
			ProfileLoadTimeout: getEnvDuration("PROFILE_LOAD_TIMEOUT", service.DefaultProfileLoadTimeout),
			SignUpSettleDelay:  getEnvDuration("SIGNUP_SETTLE_DELAY", service.DefaultSignUpSettleDelay),
			IdleTTL:            getEnvDuration("APP_SESSION_IDLE_TTL", 30*time.Minute),
			SweepInterval:      getEnvDuration("APP_SESSION_SWEEP_INTERVAL", time.Minute),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("10s", "1m30s")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
