package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"accounts-api/internal/model"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := model.HealthResponse{
		OK:       true,
		Service:  "accounts",
		Database: h.checkDatabase(r.Context()),
	}

	statusCode := http.StatusOK
	if response.Database.Status != "healthy" {
		response.OK = false
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) model.DatabaseHealth {
	dbHealth := model.DatabaseHealth{
		Status: "unhealthy",
	}

	if h.db == nil {
		return dbHealth
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return dbHealth
	}

	stats := h.db.Stats()
	dbHealth.ConnectionPool = fmt.Sprintf("open: %d, idle: %d, in_use: %d",
		stats.OpenConnections, stats.Idle, stats.InUse)

	dbHealth.Status = "healthy"
	return dbHealth
}
