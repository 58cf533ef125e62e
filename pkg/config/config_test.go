package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be 8080, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Market.TickInterval != 10*time.Second {
		t.Errorf("Expected TickInterval to be 10s, got %s", cfg.Market.TickInterval)
	}

	if cfg.Market.Timezone != "America/New_York" {
		t.Errorf("Expected Timezone to be America/New_York, got %s", cfg.Market.Timezone)
	}

	if cfg.Screener.MinPercentChange != 10.0 {
		t.Errorf("Expected MinPercentChange to be 10.0, got %f", cfg.Screener.MinPercentChange)
	}

	if cfg.Screener.Limit != 10 {
		t.Errorf("Expected Limit to be 10, got %d", cfg.Screener.Limit)
	}

	if cfg.Database.Enabled {
		t.Error("Expected archive to be disabled by default")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("QUERY_TICK_RATE", "30s")
	os.Setenv("SCREEN_MIN_VOLUME", "250000")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("QUERY_TICK_RATE")
		os.Unsetenv("SCREEN_MIN_VOLUME")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Market.TickInterval != 30*time.Second {
		t.Errorf("Expected TickInterval to be 30s, got %s", cfg.Market.TickInterval)
	}

	if cfg.Screener.MinVolume != 250000 {
		t.Errorf("Expected MinVolume to be 250000, got %d", cfg.Screener.MinVolume)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidTimezone(t *testing.T) {
	os.Setenv("MARKET_TIMEZONE", "Mars/Olympus_Mons")
	defer os.Unsetenv("MARKET_TIMEZONE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MARKET_TIMEZONE is invalid, got nil")
	}
}

func TestValidateSubSecondTick(t *testing.T) {
	os.Setenv("QUERY_TICK_RATE", "500ms")
	defer os.Unsetenv("QUERY_TICK_RATE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when QUERY_TICK_RATE is below 1s, got nil")
	}
}

func TestValidateArchiveRequiresURL(t *testing.T) {
	os.Setenv("ARCHIVE_ENABLED", "true")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("ARCHIVE_ENABLED")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ARCHIVE_ENABLED is set without DATABASE_URL, got nil")
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "12.5")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 1.0)
	if value != 12.5 {
		t.Errorf("Expected value to be 12.5, got %f", value)
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	if duration != 2*time.Hour {
		t.Errorf("Expected duration to be 2h, got %v", duration)
	}
}
