// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port            int
	LogLevel        string
	CoinGeckoAPIKey string   // Optional - adds the X-CG-API-Key header to market requests
	OpenAIAPIKey    string   // Optional - gates the AI assistant entirely
	RefreshSeconds  int      // Delay between refresh cycles
	Currencies      []string // Supported fiat currencies, lowercase
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8000),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CoinGeckoAPIKey: getEnv("COINGECKO_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		RefreshSeconds:  getEnvAsInt("REFRESH_INTERVAL", 60),
		Currencies:      parseCurrencies(getEnv("CURRENCIES", "usd,eur")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.RefreshSeconds <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d", c.RefreshSeconds)
	}
	if len(c.Currencies) == 0 {
		return fmt.Errorf("at least one supported currency is required")
	}
	return nil
}

// AIEnabled reports whether the AI assistant can be used
func (c *Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// parseCurrencies splits a comma-separated currency list, normalizing
// each code to lowercase and dropping empty entries.
func parseCurrencies(raw string) []string {
	parts := strings.Split(raw, ",")
	currencies := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		code := strings.ToLower(strings.TrimSpace(p))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		currencies = append(currencies, code)
	}
	return currencies
}

// Helper functions
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
