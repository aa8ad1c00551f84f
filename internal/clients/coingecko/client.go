// Package coingecko provides a client for the CoinGecko market data API.
package coingecko

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"

	// The free API throttles aggressively without a key, so requests carry
	// a browser-like User-Agent the same way the original deployment did.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// AssetRecord is one cryptocurrency's market snapshot as returned by the
// /coins/markets endpoint. The upstream object is carried verbatim so the
// API can re-serve fields this service never interprets; the typed fields
// are the subset the assistant needs for prompt context.
type AssetRecord struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	MarketCapRank     int     `json:"market_cap_rank"`
	PriceChange24h    float64 `json:"price_change_percentage_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the typed fields and retains the original bytes.
func (a *AssetRecord) UnmarshalJSON(data []byte) error {
	type plain AssetRecord
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = AssetRecord(v)
	a.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the upstream object untouched when available.
func (a AssetRecord) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	type plain AssetRecord
	return json.Marshal(plain(a))
}

// Client is the CoinGecko API client.
type Client struct {
	baseURL    string
	apiKey     string // Optional - raises rate limits
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new CoinGecko client.
// apiKey is optional but recommended for higher rate limits.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "coingecko").Logger(),
	}
}

// Markets fetches the top 100 assets by market cap, priced in the given
// currency. Fail-soft: any transport, status or parse failure returns an
// empty slice after logging - callers must treat empty as "unknown", not
// as "this currency has zero assets". Retry is the caller's concern.
func (c *Client) Markets(currency string) []AssetRecord {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", "100")
	q.Set("page", "1")
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h")

	reqURL := c.baseURL + "/coins/markets?" + q.Encode()

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		c.log.Error().Err(err).Str("currency", currency).Msg("Failed to build markets request")
		return nil
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-CG-API-Key", c.apiKey)
	}

	c.log.Debug().Str("currency", currency).Msg("Fetching markets")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("currency", currency).Msg("Markets request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("currency", currency).
			Msg("Markets request returned non-OK status")
		return nil
	}

	var records []AssetRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.log.Warn().Err(err).Str("currency", currency).Msg("Failed to parse markets response")
		return nil
	}

	c.log.Info().
		Int("count", len(records)).
		Str("currency", currency).
		Msg("Fetched markets")

	return records
}
