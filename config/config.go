// Package config provides configuration management. Values come from the
// environment (optionally a .env file); command-line flags in cmd/server
// override the port and database path.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port         int
	DBPath       string
	LogLevel     string
	BaseCurrency string // reporting currency all amounts normalize to
	RatesURL     string // exchange-rate service endpoint; empty disables fetching
	RatesTimeout time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvInt("PORT", 8080),
		DBPath:       getEnv("DB_PATH", "margin.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		BaseCurrency: getEnv("BASE_CURRENCY", "GBP"),
		RatesURL:     getEnv("RATES_URL", ""),
		RatesTimeout: time.Duration(getEnvInt("RATES_TIMEOUT_SECONDS", 5)) * time.Second,
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
