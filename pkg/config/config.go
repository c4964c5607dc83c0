package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	// InstanceID tags invalidation events this replica publishes. Empty means generated at startup.
	InstanceID string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	LIMS        LIMSConfig
	Cache       CacheConfig
	ListView    ListViewConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration for the mutation journal
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LIMSConfig points the gateway at the LIMS REST backend
type LIMSConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	ListTTL         time.Duration
	DetailTTL       time.Duration
	IdleTimeout     time.Duration
	JanitorInterval time.Duration
	// SharedEnabled stores query results in Redis so gateway replicas share them.
	SharedEnabled bool
}

// ListViewConfig holds worklist defaults
type ListViewConfig struct {
	DebounceDelay   time.Duration
	DefaultPageSize int
	// StreamCoalesce is the quiet window for invalidation stream bursts.
	StreamCoalesce time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		InstanceID:  getEnv("GATEWAY_INSTANCE_ID", ""),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "lims_gateway"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LIMS: LIMSConfig{
			BaseURL: getEnv("LIMS_API_URL", "http://localhost:5375/api"),
			Timeout: getEnvAsDuration("LIMS_API_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			ListTTL:         getEnvAsDuration("CACHE_LIST_TTL", 30*time.Second),
			DetailTTL:       getEnvAsDuration("CACHE_DETAIL_TTL", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("CACHE_IDLE_TIMEOUT", 5*time.Minute),
			JanitorInterval: getEnvAsDuration("CACHE_JANITOR_INTERVAL", time.Minute),
			SharedEnabled:   getEnvAsBool("CACHE_SHARED_ENABLED", false),
		},
		ListView: ListViewConfig{
			DebounceDelay:   getEnvAsDuration("LISTVIEW_DEBOUNCE", 400*time.Millisecond),
			DefaultPageSize: getEnvAsInt("LISTVIEW_PAGE_SIZE", 10),
			StreamCoalesce:  getEnvAsDuration("LISTVIEW_STREAM_COALESCE", 250*time.Millisecond),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "lims-gateway"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.LIMS.BaseURL == "" {
		return nil, fmt.Errorf("LIMS_API_URL must not be empty")
	}
	if cfg.Cache.IdleTimeout <= 0 {
		return nil, fmt.Errorf("CACHE_IDLE_TIMEOUT must be positive, got %s", cfg.Cache.IdleTimeout)
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
