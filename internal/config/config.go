// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Cache (Redis). Optional: rate limits fall back to in-process buckets.
	RedisURL string `env:"REDIS_URL"`

	// Sessions
	JWTSecret         string        `env:"JWT_SECRET,required"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"0s"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"jwt-token"`
	// CookieSecureRaw is COOKIE_SECURE as given; empty means "secure in production".
	CookieSecureRaw string `env:"COOKIE_SECURE"`

	// Timezone used to decide which calendar day a menu date falls on.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitAPIEnabled    bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitAPIRPM        int  `env:"RATE_LIMIT_API_RPM" envDefault:"300"`
	RateLimitAPIBurst      int  `env:"RATE_LIMIT_API_BURST" envDefault:"50"`
	RateLimitSignInEnabled bool `env:"RATE_LIMIT_SIGNIN_ENABLED" envDefault:"true"`
	RateLimitSignInRPS     int  `env:"RATE_LIMIT_SIGNIN_RPS" envDefault:"1"`
	RateLimitSignInBurst   int  `env:"RATE_LIMIT_SIGNIN_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	location *time.Location
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Location returns the configured TIMEZONE. Load has already validated it.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CookieSecure reports whether the session cookie carries the Secure flag.
// Unset COOKIE_SECURE means secure in production only.
func (c *Config) CookieSecure() bool {
	if v, err := strconv.ParseBool(c.CookieSecureRaw); err == nil {
		return v
	}
	return c.IsProduction()
}

// Load reads an optional .env file, then parses environment variables.
// Variables already set in the environment win over the file.
// Returns an error if required variables are missing or values are invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	c.location = loc

	if c.JWTTTL < 0 {
		return errors.New("JWT_TTL must not be negative")
	}
	if c.CookieSecureRaw != "" {
		if _, err := strconv.ParseBool(c.CookieSecureRaw); err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
	}
	if c.MaxRequestBodySize <= 0 {
		return errors.New("MAX_REQUEST_BODY_SIZE must be positive")
	}
	if c.RateLimitAPIEnabled && (c.RateLimitAPIRPM <= 0 || c.RateLimitAPIBurst <= 0) {
		return errors.New("RATE_LIMIT_API_RPM and RATE_LIMIT_API_BURST must be positive")
	}
	if c.RateLimitSignInEnabled && (c.RateLimitSignInRPS <= 0 || c.RateLimitSignInBurst <= 0) {
		return errors.New("RATE_LIMIT_SIGNIN_RPS and RATE_LIMIT_SIGNIN_BURST must be positive")
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(name)
	}
}
