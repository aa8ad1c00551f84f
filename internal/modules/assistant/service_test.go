package assistant

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodash/internal/cache"
	"cryptodash/internal/clients/coingecko"
	"cryptodash/internal/clients/openai"
)

// fakeCompleter records the last request and returns a canned answer.
type fakeCompleter struct {
	lastReq openai.ChatRequest
	reply   string
	err     error
}

func (f *fakeCompleter) ChatCompletion(req openai.ChatRequest) (string, error) {
	f.lastReq = req
	return f.reply, f.err
}

func bitcoinStore() *cache.Store {
	store := cache.New()
	store.Put("usd", []coingecko.AssetRecord{
		{
			ID:                "bitcoin",
			Symbol:            "btc",
			Name:              "Bitcoin",
			CurrentPrice:      50000,
			MarketCap:         1e12,
			MarketCapRank:     1,
			PriceChange24h:    2.5,
			CirculatingSupply: 19000000,
		},
	})
	return store
}

func TestService_Answer_NoCredential(t *testing.T) {
	svc := NewService(cache.New(), nil, zerolog.Nop())

	assert.False(t, svc.Enabled())

	result := svc.Answer("what is bitcoin?", "general")
	assert.Empty(t, result.Response)
	assert.Contains(t, result.Error, "OPENAI_API_KEY")
}

func TestService_Answer_WithCoinContext(t *testing.T) {
	completer := &fakeCompleter{reply: "Bitcoin is the largest cryptocurrency."}
	svc := NewService(bitcoinStore(), completer, zerolog.Nop())

	result := svc.Answer("what is bitcoin?", "bitcoin")
	require.Empty(t, result.Error)
	assert.Equal(t, "Bitcoin is the largest cryptocurrency.", result.Response)

	require.Len(t, completer.lastReq.Messages, 2)
	assert.Equal(t, "system", completer.lastReq.Messages[0].Role)
	assert.Contains(t, completer.lastReq.Messages[0].Content, "without making investment recommendations")

	userPrompt := completer.lastReq.Messages[1].Content
	assert.Contains(t, userPrompt, "what is bitcoin?")
	assert.Contains(t, userPrompt, "Bitcoin (BTC)")
	assert.Contains(t, userPrompt, "$50000")
	assert.Contains(t, userPrompt, "#1")
	assert.Contains(t, userPrompt, "2.5%")
	assert.Contains(t, userPrompt, "19000000 BTC")

	assert.Equal(t, "gpt-3.5-turbo", completer.lastReq.Model)
	assert.Equal(t, 500, completer.lastReq.MaxTokens)
	assert.InDelta(t, 0.7, completer.lastReq.Temperature, 0.001)
}

func TestService_Answer_CoinMatching(t *testing.T) {
	tests := []struct {
		name        string
		hint        string
		wantContext bool
	}{
		{name: "matches by id", hint: "bitcoin", wantContext: true},
		{name: "matches by symbol", hint: "BTC", wantContext: true},
		{name: "matches by name case-insensitively", hint: "bItCoIn", wantContext: true},
		{name: "general sentinel skips lookup", hint: "general", wantContext: false},
		{name: "empty hint skips lookup", hint: "", wantContext: false},
		{name: "unknown coin proceeds without context", hint: "dogecoin", wantContext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{reply: "ok"}
			svc := NewService(bitcoinStore(), completer, zerolog.Nop())

			result := svc.Answer("tell me more", tt.hint)
			require.Empty(t, result.Error)

			userPrompt := completer.lastReq.Messages[1].Content
			if tt.wantContext {
				assert.Contains(t, userPrompt, "Current information about Bitcoin")
			} else {
				assert.Equal(t, "tell me more", userPrompt)
			}
		})
	}
}

func TestService_Answer_ProviderFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection reset")}
	svc := NewService(bitcoinStore(), completer, zerolog.Nop())

	result := svc.Answer("what is bitcoin?", "general")
	assert.Empty(t, result.Response)
	assert.Equal(t, "Failed to generate AI response", result.Error)
	assert.Contains(t, result.Detail, "connection reset")
}
