package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"rld/internal/storage"
	"rld/internal/structures"
	"time"
)

const healthProbeKey = "rld:health:probe"

type HealthController struct {
	store     storage.Store
	backend   string
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Store         string  `json:"store"`
	StoreHealthy  bool    `json:"store_healthy"`
}

// Health always answers 200: a broken store degrades the ledger but the
// daemon keeps serving.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	_, err := hc.store.Get(ctx, healthProbeKey)
	healthy := err == nil || errors.Is(err, storage.ErrNotFound)

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Store:         hc.backend,
		StoreHealthy:  healthy,
	}
	if !healthy {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(conf *structures.Config, store storage.Store) *HealthController {
	return &HealthController{
		store:     store,
		backend:   conf.Store.Backend,
		startTime: time.Now(),
	}
}
