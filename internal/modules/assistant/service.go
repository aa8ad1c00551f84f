// Package assistant answers free-text cryptocurrency questions via an LLM,
// enriching prompts with cached market data when a coin is named.
package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"cryptodash/internal/cache"
	"cryptodash/internal/clients/coingecko"
	"cryptodash/internal/clients/openai"
)

const (
	model       = "gpt-3.5-turbo"
	maxTokens   = 500
	temperature = 0.7

	// Sentinel hint meaning "no specific coin".
	generalHint = "general"

	systemPrompt = "You are a helpful assistant specializing in cryptocurrency analysis and information. " +
		"Provide concise, accurate, and informative responses about cryptocurrencies, blockchain technology, " +
		"market trends, and specific coins. Focus on factual information without making investment recommendations."
)

// Completer sends a chat exchange to the language model provider.
// Implemented by openai.Client.
type Completer interface {
	ChatCompletion(req openai.ChatRequest) (string, error)
}

// Result is the assistant's answer. Exactly one of Response or Error is
// set; Detail carries a human-readable explanation alongside Error.
type Result struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Service looks up cached market data and forwards augmented prompts to
// the completion provider.
type Service struct {
	store     *cache.Store
	completer Completer // nil when no API key is configured
	log       zerolog.Logger
}

// NewService creates the assistant service. completer may be nil, in which
// case every Answer call returns a configuration error without any network
// activity.
func NewService(store *cache.Store, completer Completer, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		completer: completer,
		log:       log.With().Str("component", "assistant").Logger(),
	}
}

// Enabled reports whether a completion provider is configured.
func (s *Service) Enabled() bool {
	return s.completer != nil
}

// Answer responds to a question, optionally scoped to a named coin. Provider
// failures are converted to structured error results; the credential check
// happens before any network call.
func (s *Service) Answer(question, coinHint string) Result {
	if s.completer == nil {
		return Result{
			Error: "OpenAI API key not configured. Please set the OPENAI_API_KEY environment variable.",
		}
	}

	userPrompt := question
	if info := s.coinContext(coinHint); info != "" {
		userPrompt = question + "\n\nHere is the current data for this cryptocurrency:\n" + info
	}

	s.log.Info().Str("question", question).Str("coin", coinHint).Msg("Answering question")

	response, err := s.completer.ChatCompletion(openai.ChatRequest{
		Model: model,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Chat completion failed")
		return Result{
			Error:  "Failed to generate AI response",
			Detail: err.Error(),
		}
	}

	return Result{Response: response}
}

// coinContext scans every cached currency's records for an asset whose id,
// symbol or name matches the hint case-insensitively, and renders a context
// block for the first match. An empty result means "proceed without
// context" - a missed lookup is not an error.
func (s *Service) coinContext(coinHint string) string {
	hint := strings.ToLower(strings.TrimSpace(coinHint))
	if hint == "" || hint == generalHint {
		return ""
	}

	for _, records := range s.store.All() {
		for i := range records {
			if matchesHint(&records[i], hint) {
				return formatContext(&records[i])
			}
		}
	}

	s.log.Debug().Str("coin", coinHint).Msg("No cached data matched coin hint")
	return ""
}

func matchesHint(a *coingecko.AssetRecord, hint string) bool {
	return hint == strings.ToLower(a.ID) ||
		hint == strings.ToLower(a.Symbol) ||
		hint == strings.ToLower(a.Name)
}

func formatContext(a *coingecko.AssetRecord) string {
	symbol := strings.ToUpper(a.Symbol)
	return fmt.Sprintf(
		"Current information about %s (%s):\n"+
			"- Current price (USD): $%s\n"+
			"- Market cap: $%s\n"+
			"- Market cap rank: #%d\n"+
			"- 24h price change: %s%%\n"+
			"- Circulating supply: %s %s",
		a.Name, symbol,
		formatNumber(a.CurrentPrice),
		formatNumber(a.MarketCap),
		a.MarketCapRank,
		formatNumber(a.PriceChange24h),
		formatNumber(a.CirculatingSupply), symbol,
	)
}

// formatNumber renders a float without trailing zeros, matching the way
// the upstream JSON values read.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
