package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// SDKConfig holds the settings an application passes to the ad SDK.
type SDKConfig struct {
	// ClickTrackingEndpoint receives one POST per tap. Required.
	ClickTrackingEndpoint string
	ConnectTimeout        time.Duration
	ReadTimeout           time.Duration
	// LoggingEnabled turns on SDK logs when no logger is supplied.
	LoggingEnabled bool
	// PatternConfigPath is the attack pattern document read at initialization.
	PatternConfigPath string
	// PackageName identifies the host application for package overrides.
	PackageName string
}

var (
	// ErrMissingEndpoint is returned when no click tracking endpoint is configured.
	ErrMissingEndpoint = errors.New("click tracking endpoint is required")
	// ErrInvalidTimeout is returned for zero or negative timeouts.
	ErrInvalidTimeout = errors.New("timeouts must be positive")
)

// DefaultSDKConfig returns an SDKConfig with the default timeouts and config
// path for the given endpoint.
func DefaultSDKConfig(endpoint string) SDKConfig {
	return SDKConfig{
		ClickTrackingEndpoint: endpoint,
		ConnectTimeout:        10 * time.Second,
		ReadTimeout:           10 * time.Second,
		PatternConfigPath:     "attack_pattern.json",
	}
}

// LoadSDK reads SDK settings from environment variables.
func LoadSDK() SDKConfig {
	cfg := DefaultSDKConfig(getenv("CLICK_TRACKING_ENDPOINT", ""))
	cfg.ConnectTimeout = envDuration("CLICK_CONNECT_TIMEOUT", cfg.ConnectTimeout)
	cfg.ReadTimeout = envDuration("CLICK_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.LoggingEnabled = envBool("ADSDK_LOGGING_ENABLED", false)
	cfg.PatternConfigPath = getenv("ATTACK_PATTERN_CONFIG", cfg.PatternConfigPath)
	cfg.PackageName = getenv("ADSDK_PACKAGE_NAME", "")
	return cfg
}

// Validate reports the first problem that would prevent the SDK from starting.
func (c SDKConfig) Validate() error {
	if strings.TrimSpace(c.ClickTrackingEndpoint) == "" {
		return ErrMissingEndpoint
	}
	if c.ConnectTimeout <= 0 || c.ReadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Config holds collector and tooling configuration derived from environment variables.
type Config struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	RedisAddr     string
	ClickHouseDSN string
	GeoIPDB       string
	ServiceName   string
	// Rate limiting of incoming clicks per device
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int
	// ClickHouse connection pooling configuration
	CHMaxOpenConns    int
	CHMaxIdleConns    int
	CHConnMaxLifetime time.Duration
	CHConnMaxIdleTime time.Duration
	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
	// SDK settings used by the demo and inspection tools
	SDK SDKConfig
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8788")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")
	cfg.GeoIPDB = getenv("GEOIP_DB", "GeoLite2-City.mmdb")
	cfg.ServiceName = getenv("SERVICE_NAME", "click-collector")

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitCapacity = envInt("RATE_LIMIT_CAPACITY", 20)
	cfg.RateLimitRefillRate = envInt("RATE_LIMIT_REFILL_RATE", 2)

	// ClickHouse connection pooling configuration
	// Click inserts are small and asynchronous, so a modest pool is enough
	cfg.CHMaxOpenConns = envInt("CH_MAX_OPEN_CONNS", 20)
	cfg.CHMaxIdleConns = envInt("CH_MAX_IDLE_CONNS", 5)
	cfg.CHConnMaxLifetime = envDuration("CH_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.CHConnMaxIdleTime = envDuration("CH_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// Tracing configuration
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0) // Default to 100% sampling for dev

	cfg.SDK = LoadSDK()
	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
