package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string    `json:"serverAddress"`
	DatabasePath  string    `json:"databasePath"`
	DatabaseURL   string    `json:"databaseUrl"`
	LogLevel      string    `json:"logLevel"`
	Flickr        Flickr    `json:"flickr"`
	Feed          Feed      `json:"feed"`
	Security      Security  `json:"security"`
	Telemetry     Telemetry `json:"telemetry"`
}

// Flickr API client configuration
type Flickr struct {
	APIKey         string  `json:"apiKey"`
	BaseURL        string  `json:"baseUrl"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
	RatePerSecond  float64 `json:"ratePerSecond"`
	Burst          int     `json:"burst"`
}

// Feed session configuration
type Feed struct {
	PageSize           int `json:"pageSize"`
	DebounceMillis     int `json:"debounceMs"`
	SessionIdleMinutes int `json:"sessionIdleMinutes"`
	DetailCacheSize    int `json:"detailCacheSize"`
}

// Security configuration. APIKeyHash, a bcrypt hash, takes precedence over APIKey.
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHash   string `json:"apiKeyHash"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// Telemetry configuration
type Telemetry struct {
	Enabled      bool    `json:"enabled"`
	OTLPEndpoint string  `json:"otlpEndpoint"`
	Environment  string  `json:"environment"`
	SampleRatio  float64 `json:"sampleRatio"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// AuthEnabled reports whether /api requires an API key
func (c *Config) AuthEnabled() bool {
	return c.Security.APIKey != "" || c.Security.APIKeyHash != ""
}

// FlickrTimeout returns the Flickr request timeout
func (c *Config) FlickrTimeout() time.Duration {
	return time.Duration(c.Flickr.TimeoutSeconds) * time.Second
}

// DebounceDelay returns the scroll debounce window
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Feed.DebounceMillis) * time.Millisecond
}

// SessionIdleTimeout returns how long an unused session lives; zero disables expiry
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.Feed.SessionIdleMinutes) * time.Minute
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "photofeed.db",
		LogLevel:      "info",
		Flickr: Flickr{
			BaseURL:        "https://api.flickr.com/services/rest/",
			TimeoutSeconds: 30,
			RatePerSecond:  1,
			Burst:          5,
		},
		Feed: Feed{
			PageSize:           100,
			DebounceMillis:     1000,
			SessionIdleMinutes: 30,
			DetailCacheSize:    256,
		},
		Security: Security{
			APIKeyHeader: "X-API-Key",
		},
		Telemetry: Telemetry{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			Environment:  "development",
			SampleRatio:  1,
		},
	}
}

// Load loads configuration: defaults, then the JSON file at CONFIG_PATH
// (config.json), then .env, then the process environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if key := os.Getenv("FLICKR_API_KEY"); key != "" {
		cfg.Flickr.APIKey = key
	}
	if base := os.Getenv("FLICKR_BASE_URL"); base != "" {
		cfg.Flickr.BaseURL = base
	}
	if v := os.Getenv("FLICKR_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Flickr.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("FLICKR_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Flickr.RatePerSecond = f
		}
	}

	if v := os.Getenv("FEED_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feed.PageSize = n
		}
	}
	if v := os.Getenv("FEED_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feed.DebounceMillis = n
		}
	}
	if v := os.Getenv("FEED_SESSION_IDLE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Feed.SessionIdleMinutes = n
		}
	}

	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}
	if hash := os.Getenv("API_KEY_HASH"); hash != "" {
		cfg.Security.APIKeyHash = hash
	}

	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		cfg.Telemetry.Enabled = enabled == "true" || enabled == "1"
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Telemetry.OTLPEndpoint = endpoint
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Telemetry.Environment = env
	}
}

// Validate rejects settings the feed cannot run with
func (c *Config) Validate() error {
	if c.Feed.PageSize < 2 {
		return fmt.Errorf("feed page size must be at least 2, got %d", c.Feed.PageSize)
	}
	if c.Feed.DebounceMillis < 0 {
		return fmt.Errorf("feed debounce must not be negative, got %dms", c.Feed.DebounceMillis)
	}
	if c.Flickr.RatePerSecond < 0 {
		return fmt.Errorf("flickr rate must not be negative, got %v", c.Flickr.RatePerSecond)
	}
	if c.Security.APIKeyHeader == "" {
		c.Security.APIKeyHeader = "X-API-Key"
	}
	return nil
}
