package handler

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"je-feed-v2/internal/service"
	"je-feed-v2/internal/store"
	"je-feed-v2/pkg/apierror"
	"je-feed-v2/pkg/response"
)

// StartTime tracks when the process started for uptime calculation.
var StartTime = time.Now()

// FeedHandler serves the generated feed and run/store statistics.
type FeedHandler struct {
	svc   *service.SyncService
	store store.Store
}

// NewFeedHandler creates the handler.
func NewFeedHandler(svc *service.SyncService, st store.Store) *FeedHandler {
	return &FeedHandler{svc: svc, store: st}
}

// Feed handles GET /feed.xml — the document the marketplace importer pulls.
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	path := h.svc.FeedPath()
	if path == "" {
		response.Error(w, apierror.Unavailable("feed not configured"))
		return
	}
	if _, err := os.Stat(path); err != nil {
		response.Error(w, apierror.NotFound("feed not generated yet"))
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	http.ServeFile(w, r, path)
}

// StatsResponse aggregates store and run statistics.
type StatsResponse struct {
	Store   map[string]any `json:"store"`
	LastRun any            `json:"last_run,omitempty"`
}

// Stats handles GET /api/v1/stats.
func (h *FeedHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("store stats unavailable"))
		return
	}
	resp := StatsResponse{Store: stats}
	if report := h.svc.LastReport(); report != nil {
		resp.LastRun = report
	}
	response.OK(w, resp)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health handles GET /api/v1/health.
func (h *FeedHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// StatusResponse is the unified status payload for external monitoring.
type StatusResponse struct {
	Service       string  `json:"service"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	MemoryMB      float64 `json:"memory_mb"`
}

// Status handles GET /api/status.
func (h *FeedHandler) Status(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryMB := float64(memStats.Alloc) / 1024 / 1024

	resp := StatusResponse{
		Service:       "je-feed",
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
		MemoryMB:      float64(int(memoryMB*100)) / 100,
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.OK(w, resp)
}
