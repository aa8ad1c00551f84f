package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers exposes process and host statistics for operational
// monitoring.
type SystemHandlers struct {
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(startedAt time.Time, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		startedAt: startedAt,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleSystemStats handles GET /api/system
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()

	response := map[string]interface{}{
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"goroutines":     runtime.NumGoroutine(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// systemStats calculates CPU and RAM usage percentages.
// Uses a short sampling interval (100ms) so the endpoint responds quickly
// while still giving a usable reading.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
