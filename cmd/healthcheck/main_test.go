package main

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const statusBody = `{
	"status": "online",
	"last_update": "2026-03-01T12:00:00Z",
	"currencies_available": ["usd", "eur"],
	"cached_currencies": ["usd"],
	"ai_assistant_enabled": true
}`

func TestCheckServer_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/status", r.URL.Path)
		_, _ = w.Write([]byte(statusBody))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: time.Second}
	assert.True(t, checkServer(client, srv.URL, 3, time.Millisecond, zerolog.Nop()))
}

func TestCheckServer_RecoversWithinRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(statusBody))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: time.Second}
	assert.True(t, checkServer(client, srv.URL, 3, time.Millisecond, zerolog.Nop()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestCheckServer_FailsAfterBoundedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: time.Second}
	assert.False(t, checkServer(client, srv.URL, 3, time.Millisecond, zerolog.Nop()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestCheckServer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := &http.Client{Timeout: time.Second}
	assert.False(t, checkServer(client, srv.URL, 2, time.Millisecond, zerolog.Nop()))
}
