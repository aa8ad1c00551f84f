// Package main is an operational health check for a running CryptoDash
// server. It polls /api/status with bounded retries and exits non-zero if
// the server never responds with a healthy status.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cryptodash/pkg/logger"
)

const (
	defaultURL  = "http://localhost:8000"
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

type statusResponse struct {
	Status              string   `json:"status"`
	LastUpdate          string   `json:"last_update"`
	CurrenciesAvailable []string `json:"currencies_available"`
	CachedCurrencies    []string `json:"cached_currencies"`
	AIAssistantEnabled  bool     `json:"ai_assistant_enabled"`
}

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})

	baseURL := defaultURL
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	client := &http.Client{Timeout: 5 * time.Second}
	if !checkServer(client, baseURL, maxAttempts, retryDelay, log) {
		os.Exit(1)
	}
}

// checkServer polls the status endpoint until it answers 200 or attempts
// run out. Each failure waits retryDelay before the next try.
func checkServer(client *http.Client, baseURL string, attempts int, delay time.Duration, log zerolog.Logger) bool {
	url := strings.TrimRight(baseURL, "/") + "/api/status"
	log.Info().Str("url", url).Msg("Checking server")

	for attempt := 1; attempt <= attempts; attempt++ {
		status, err := fetchStatus(client, url)
		if err == nil {
			log.Info().
				Str("last_update", status.LastUpdate).
				Strs("currencies", status.CurrenciesAvailable).
				Bool("ai_assistant_enabled", status.AIAssistantEnabled).
				Msg("Server is running")
			return true
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("Server check failed")

		if attempt < attempts {
			time.Sleep(delay)
		}
	}

	log.Error().Msg("Server check failed after all attempts")
	return false
}

func fetchStatus(client *http.Client, url string) (*statusResponse, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	return &status, nil
}
