package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by the postgres and redis wrappers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db    HealthChecker
	redis HealthChecker
}

func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "alive"})
}

// Ready pings postgres and redis; either failing makes the instance unready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Postgres: "ok", Redis: "ok"}
	status := http.StatusOK
	if err := h.db.Health(ctx); err != nil {
		resp.Postgres = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Health(ctx); err != nil {
		resp.Redis = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if status != http.StatusOK {
		resp.Status = "not ready"
	}
	writeJSON(w, status, resp)
}
