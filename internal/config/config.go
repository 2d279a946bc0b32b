package config

import (
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig   `envconfig:"SERVER"`
	Database     DatabaseConfig `envconfig:"DB"`
	CORS         CORSConfig     `envconfig:"CORS"`
	AlphaVantage AlphaVantage   `envconfig:"ALPHAVANTAGE"`
	Auth         AuthConfig     `envconfig:"AUTH"`
	Mail         MailConfig     `envconfig:"MAIL"`
	Log          LogConfig      `envconfig:"LOG"`
	Refresh      RefreshConfig  `envconfig:"REFRESH"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"5001"`
	Host string `envconfig:"HOST" default:"localhost"`
	Addr string `ignored:"true"` // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `envconfig:"PATH" default:"./data/stock_portfolio.db"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost"`
}

// AlphaVantage configures the quote provider client.
type AlphaVantage struct {
	APIKey  string        `envconfig:"API_KEY" default:"demo"`
	BaseURL string        `envconfig:"BASE_URL" default:"https://www.alphavantage.co/query"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// AuthConfig holds the signing secret and token lifetimes.
// TokenTTL matches the fourteen-day remember-me window of the web client.
type AuthConfig struct {
	SecretKey  string        `envconfig:"SECRET_KEY" required:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"336h"`
	ConfirmTTL time.Duration `envconfig:"CONFIRM_TTL" default:"1h"`
}

// MailConfig configures outgoing mail. An empty Host selects the log-only mailer.
type MailConfig struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM" default:"noreply@localhost"`
	BaseURL  string `envconfig:"BASE_URL" default:"http://localhost:3000"` // used to build links in mails
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"` // json or console
}

// RefreshConfig controls the optional scheduled refresh. An empty Schedule
// disables it; data is then refreshed only when requested.
type RefreshConfig struct {
	Schedule    string `envconfig:"SCHEDULE"`
	Concurrency int    `envconfig:"CONCURRENCY" default:"4"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("AUTH_SECRET_KEY must not be empty")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be json or console", cfg.Log.Format)
	}
	if cfg.Refresh.Concurrency < 1 {
		cfg.Refresh.Concurrency = 1
	}

	// Combine host and port
	cfg.Server.Addr = net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)

	return &cfg, nil
}
