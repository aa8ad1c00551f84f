// Package main is the entry point for the CryptoDash market data server.
// It polls CoinGecko for market snapshots on a fixed interval, caches the
// latest data per currency in memory, and serves it over a small JSON API
// with an optional AI assistant backed by OpenAI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptodash/internal/cache"
	"cryptodash/internal/clients/coingecko"
	"cryptodash/internal/clients/openai"
	"cryptodash/internal/config"
	"cryptodash/internal/modules/assistant"
	assistanthandlers "cryptodash/internal/modules/assistant/handlers"
	markethandlers "cryptodash/internal/modules/market/handlers"
	"cryptodash/internal/refresh"
	"cryptodash/internal/scheduler"
	"cryptodash/internal/server"
	"cryptodash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Strs("currencies", cfg.Currencies).Msg("Starting CryptoDash")

	store := cache.New()
	geckoClient := coingecko.NewClient(cfg.CoinGeckoAPIKey, log)

	// The assistant is gated entirely on the API key being present.
	var completer assistant.Completer
	if cfg.AIEnabled() {
		completer = openai.NewClient(cfg.OpenAIAPIKey, log)
		log.Info().Msg("OpenAI API key found, AI assistant enabled")
	} else {
		log.Warn().Msg("No OpenAI API key configured, AI assistant disabled")
	}
	assistantSvc := assistant.NewService(store, completer, log)

	refreshJob := refresh.NewJob(store, geckoClient, cfg.Currencies, log)

	// One synchronous cycle before the listener starts, so the first
	// request sees a best-effort cache (possibly still empty if the
	// provider was unreachable).
	if err := refreshJob.Run(); err != nil {
		log.Error().Err(err).Msg("Initial refresh failed")
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(fmt.Sprintf("@every %ds", cfg.RefreshSeconds), refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Port:              cfg.Port,
		Log:               log,
		MarketHandlers:    markethandlers.NewHandler(store, geckoClient, cfg.Currencies, cfg.AIEnabled(), log),
		AssistantHandlers: assistanthandlers.NewHandler(assistantSvc, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	// Graceful shutdown with a bounded window for in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
