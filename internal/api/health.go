package api

import (
	"net/http"
	"time"

	"github.com/snarg/stt-bench/internal/catalog"
	"github.com/snarg/stt-bench/internal/media"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
	Providers     []string          `json:"providers"`
	CacheEntries  int               `json:"cache_entries"`
}

type HealthHandler struct {
	db        *catalog.DB // nil when not configured
	cacheLen  func() int
	providers []string
	version   string
	startTime time.Time
}

func NewHealthHandler(db *catalog.DB, cacheLen func() int, providers []string, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cacheLen:  cacheLen,
		providers: providers,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	// ffmpeg degrades: probing and compression stop working but cached and
	// small-file transcriptions still go through.
	if media.CheckFFmpeg() && media.CheckFFprobe() {
		checks["ffmpeg"] = "ok"
	} else {
		checks["ffmpeg"] = "missing"
		status = "degraded"
	}

	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			checks["recordings_db"] = "error"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["recordings_db"] = "ok"
		}
	} else {
		checks["recordings_db"] = "not_configured"
	}

	if len(h.providers) == 0 {
		checks["providers"] = "none_configured"
		if status == "healthy" {
			status = "degraded"
		}
	} else {
		checks["providers"] = "ok"
	}

	providers := h.providers
	if providers == nil {
		providers = []string{}
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
		Providers:     providers,
		CacheEntries:  h.cacheLen(),
	})
}
