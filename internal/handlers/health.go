package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/autotax/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout bounds the database ping in Ready.
	HealthCheckTimeout = 2 * time.Second
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogCounter reports how many vehicles the served catalog holds.
type CatalogCounter interface {
	Count() int
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	catalog   CatalogCounter
	db        Pinger
	startTime time.Time
	env       string
}

// NewHealthHandler creates a HealthHandler. db may be nil when the catalog
// was not loaded from a database.
func NewHealthHandler(catalog CatalogCounter, db Pinger, env string) *HealthHandler {
	return &HealthHandler{
		catalog:   catalog,
		db:        db,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Catalog  string `json:"catalog"`
	Vehicles int    `json:"vehicles"`
	Database string `json:"database,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. It never checks dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready.
// The service is ready once a catalog is loaded and, when the catalog came
// from PostgreSQL, the database still answers a ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status:  "not_ready",
			Catalog: "not_loaded",
		})
		return
	}

	resp := ReadyResponse{
		Status:   "ready",
		Catalog:  "loaded",
		Vehicles: h.catalog.Count(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Database health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}
			resp.Status = "not_ready"
			resp.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "connected"
	}

	c.JSON(http.StatusOK, resp)
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
