package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodash/internal/cache"
	"cryptodash/internal/clients/openai"
	"cryptodash/internal/modules/assistant"
)

type fakeCompleter struct {
	reply string
}

func (f *fakeCompleter) ChatCompletion(req openai.ChatRequest) (string, error) {
	return f.reply, nil
}

func newHandler(completer assistant.Completer) *Handler {
	svc := assistant.NewService(cache.New(), completer, zerolog.Nop())
	return NewHandler(svc, zerolog.Nop())
}

func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ai-assistant", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleAsk(rec, req)
	return rec
}

func TestHandleAsk(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed JSON",
			body:       `{"question": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON",
		},
		{
			name:       "missing question",
			body:       `{"cryptoName": "bitcoin"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing question parameter",
		},
		{
			name:       "empty question",
			body:       `{"question": ""}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing question parameter",
		},
		{
			name:       "whitespace question",
			body:       `{"question": "   "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing question parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newHandler(&fakeCompleter{reply: "ok"}), tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestHandleAsk_Success(t *testing.T) {
	rec := post(t, newHandler(&fakeCompleter{reply: "Bitcoin is a cryptocurrency."}), `{"question": "what is bitcoin?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result assistant.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Bitcoin is a cryptocurrency.", result.Response)
	assert.Empty(t, result.Error)
}

// Provider-side failures keep status 200; clients inspect the body's error
// field.
func TestHandleAsk_DisabledAssistantStill200(t *testing.T) {
	rec := post(t, newHandler(nil), `{"question": "what is bitcoin?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result assistant.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Response)
	assert.Contains(t, result.Error, "OPENAI_API_KEY")
}
