package handlers

import (
	"net/http"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/store"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store *store.Store
	cache cache.Cache
}

func NewHealthHandler(s *store.Store, c cache.Cache) *HealthHandler {
	return &HealthHandler{store: s, cache: c}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Live handles GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready handles GET /health/ready; the store must answer for the process
// to be ready. A degraded cache does not fail readiness.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.store.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	status := gin.H{"status": "ready"}
	if h.cache != nil {
		if err := h.cache.Health(c.Request.Context()); err != nil {
			status["cache"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, status)
}
