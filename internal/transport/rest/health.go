package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Pinger is satisfied by the mongo client and the SQL store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	components map[string]Pinger
	timeout    time.Duration
}

func NewHealthHandler(components map[string]Pinger) *HealthHandler {
	return &HealthHandler{components: components, timeout: 2 * time.Second}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler reports 503 when any backing store fails its ping.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(names)),
	}
	for _, name := range names {
		entry := h.check(r.Context(), h.components[name])
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
		resp.Components[name] = entry
	}
	resp.CheckedAt = time.Now().UTC()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, resp)
}

func (h *HealthHandler) check(ctx context.Context, p Pinger) CheckEntry {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now().UTC(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = "ping failed"
	}
	return entry
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
