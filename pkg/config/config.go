package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis (primary store)
	Redis RedisConfig

	// Postgres (ledger archive, optional)
	Database DatabaseConfig

	// Market data provider
	Yahoo YahooConfig

	// Market session & polling
	Market MarketConfig

	// Screener filters
	Screener ScreenerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

// DatabaseConfig holds PostgreSQL configuration for the archive
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// YahooConfig holds Yahoo Finance endpoint configuration
type YahooConfig struct {
	QueryBaseURL  string
	ScrapeBaseURL string
	UserAgent     string
	Timeout       time.Duration

	// Outbound request budget (requests per second)
	RateLimit int
}

// MarketConfig holds trading-session parameters
type MarketConfig struct {
	Timezone     string
	TickInterval time.Duration
}

// ScreenerConfig holds the fixed gainer filter set
type ScreenerConfig struct {
	MinPercentChange float64
	MinPrice         float64
	MinVolume        int64
	MinMarketCap     int64 // 0 means no market cap filter
	USOnly           bool
	Limit            int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "127.0.0.1"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "topgainers"),
		},

		// Postgres archive
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Yahoo Finance
		Yahoo: YahooConfig{
			QueryBaseURL:  getEnv("YAHOO_QUERY_BASE_URL", "https://query1.finance.yahoo.com"),
			ScrapeBaseURL: getEnv("YAHOO_SCRAPE_BASE_URL", "https://finance.yahoo.com"),
			UserAgent:     getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
			Timeout:       getEnvAsDuration("YAHOO_TIMEOUT", "5s"),
			RateLimit:     getEnvAsInt("YAHOO_RATE_LIMIT", 5),
		},

		// Market session
		Market: MarketConfig{
			Timezone:     getEnv("MARKET_TIMEZONE", "America/New_York"),
			TickInterval: getEnvAsDuration("QUERY_TICK_RATE", "10s"),
		},

		// Screener filters
		Screener: ScreenerConfig{
			MinPercentChange: getEnvAsFloat("SCREEN_MIN_PERCENT_CHANGE", 10.0),
			MinPrice:         getEnvAsFloat("SCREEN_MIN_PRICE", 0.2),
			MinVolume:        int64(getEnvAsInt("SCREEN_MIN_VOLUME", 100000)),
			MinMarketCap:     int64(getEnvAsInt("SCREEN_MIN_MARKET_CAP", 0)),
			USOnly:           getEnvAsBool("SCREEN_US_ONLY", true),
			Limit:            getEnvAsInt("SCREEN_LIMIT", 10),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Market.TickInterval < time.Second {
		return fmt.Errorf("QUERY_TICK_RATE must be at least 1s, got %s", c.Market.TickInterval)
	}

	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE %q is not a valid IANA zone: %w", c.Market.Timezone, err)
	}

	// Postgres is only required when the archive is on
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when ARCHIVE_ENABLED=true")
	}

	if c.Screener.Limit <= 0 {
		return fmt.Errorf("SCREEN_LIMIT must be positive, got %d", c.Screener.Limit)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
