package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/database"
)

// DatabaseProbe is implemented by database.Manager
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() database.Stats
}

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	driver string
	probe  DatabaseProbe // nil for the in-memory driver
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(driver string, probe DatabaseProbe) *HealthHandler {
	return &HealthHandler{driver: driver, probe: probe}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Driver: h.driver}
	if h.probe == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Database = h.probe.Stats()
	if err := h.probe.Ping(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
