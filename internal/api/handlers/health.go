package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/lectern/internal/api"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler. db may be nil when the
// process runs without a database.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		api.JSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		api.JSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: err.Error()})
		return
	}

	api.JSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
