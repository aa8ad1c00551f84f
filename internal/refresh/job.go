// Package refresh implements the periodic market data refresh cycle.
package refresh

import (
	"time"

	"github.com/rs/zerolog"

	"cryptodash/internal/cache"
	"cryptodash/internal/clients/coingecko"
)

// Fetcher fetches market data for one currency. Implemented by
// coingecko.Client; fail-soft, an empty result means "unknown".
type Fetcher interface {
	Markets(currency string) []coingecko.AssetRecord
}

// Job refreshes the cache for every supported currency. It implements
// scheduler.Job and is also run once synchronously at startup so the HTTP
// listener starts with a best-effort cache.
type Job struct {
	store      *cache.Store
	fetcher    Fetcher
	currencies []string
	log        zerolog.Logger
}

// NewJob creates a refresh job over the given currency list. The list
// order is the per-cycle processing order and must be stable.
func NewJob(store *cache.Store, fetcher Fetcher, currencies []string, log zerolog.Logger) *Job {
	return &Job{
		store:      store,
		fetcher:    fetcher,
		currencies: currencies,
		log:        log.With().Str("job", "market-refresh").Logger(),
	}
}

// Name implements scheduler.Job
func (j *Job) Name() string {
	return "market-refresh"
}

// Run executes one refresh cycle. A cycle already in progress makes this a
// no-op (skip, not queue). Failed fetches leave the previous cached value
// in place - stale data beats no data. The shared last-update timestamp is
// set once per cycle regardless of how many fetches succeeded, and the
// in-progress flag is cleared on every exit path.
func (j *Job) Run() error {
	if !j.store.TryBeginRefresh() {
		j.log.Debug().Msg("Refresh already in progress, skipping cycle")
		return nil
	}
	defer j.store.EndRefresh()

	fetched := 0
	for _, currency := range j.currencies {
		records := j.fetcher.Markets(currency)
		if len(records) == 0 {
			j.log.Warn().Str("currency", currency).Msg("Fetch returned no data, keeping previous entry")
			continue
		}
		j.store.Put(currency, records)
		fetched++
	}

	j.store.MarkUpdated(time.Now())

	j.log.Info().
		Int("fetched", fetched).
		Int("currencies", len(j.currencies)).
		Msg("Refresh cycle completed")

	return nil
}
