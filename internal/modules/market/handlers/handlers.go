// Package handlers provides HTTP handlers for market data endpoints.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cryptodash/internal/cache"
	"cryptodash/internal/refresh"
)

// defaultCurrency is used when the currency query parameter is omitted.
const defaultCurrency = "usd"

// Handler handles market data HTTP requests
type Handler struct {
	store      *cache.Store
	fetcher    refresh.Fetcher
	currencies []string
	aiEnabled  bool
	log        zerolog.Logger
}

// NewHandler creates a new market data handler. currencies is the supported
// set in its canonical (lowercase) form.
func NewHandler(
	store *cache.Store,
	fetcher refresh.Fetcher,
	currencies []string,
	aiEnabled bool,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		store:      store,
		fetcher:    fetcher,
		currencies: currencies,
		aiEnabled:  aiEnabled,
		log:        log.With().Str("handler", "market").Logger(),
	}
}

// HandleListCryptocurrencies handles GET /api/cryptocurrencies
// Serves the cached asset list for one currency, fetching through to the
// provider once when the cache is cold.
func (h *Handler) HandleListCryptocurrencies(w http.ResponseWriter, r *http.Request) {
	currency := strings.ToLower(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = defaultCurrency
	}

	if !h.supported(currency) {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid currency",
			"detail": fmt.Sprintf("Unsupported currency: %s. Supported currencies are: %s", currency, strings.Join(h.currencies, ", ")),
		})
		return
	}

	records := h.store.Get(currency)

	// Cold cache: one synchronous fetch-through, stored only if it
	// produced data.
	if len(records) == 0 {
		h.log.Info().Str("currency", currency).Msg("Cache miss, fetching through")
		records = h.fetcher.Markets(currency)
		if len(records) > 0 {
			h.store.Put(currency, records)
		}
	}

	if len(records) == 0 {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":  "Service unavailable",
			"detail": "Unable to fetch cryptocurrency data. The service is temporarily unavailable.",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, records)
}

// HandleStatus handles GET /api/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.store.Snapshot()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "online",
		"last_update":          status.LastUpdate.Format(time.RFC3339),
		"currencies_available": h.currencies,
		"cached_currencies":    status.CachedCurrencies,
		"ai_assistant_enabled": h.aiEnabled,
	})
}

func (h *Handler) supported(currency string) bool {
	for _, c := range h.currencies {
		if c == currency {
			return true
		}
	}
	return false
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
