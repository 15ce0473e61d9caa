package handlers

import (
	"net/http"
	"runtime"
	"time"
)

// Metrics reports process counters since start.
func (a *App) Metrics(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if a.Clients != nil {
		clients = a.Clients.Len()
	}
	a.json(w, http.StatusOK, map[string]any{
		"uptime_seconds":       int64(time.Since(a.StartedAt).Seconds()),
		"active_clients":       clients,
		"goroutines":           runtime.NumGoroutine(),
		"photoshoot_succeeded": a.Stats.Succeeded.Load(),
		"photoshoot_failed":    a.Stats.Failed.Load(),
		"images_generated":     a.Stats.Images.Load(),
	})
}
