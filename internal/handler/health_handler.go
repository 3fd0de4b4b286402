package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taxdocs/internal/service"
	"taxdocs/pkg/logger"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	documentService service.DocumentService
	storeDriver     string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(documentService service.DocumentService, storeDriver string) *HealthHandler {
	return &HealthHandler{documentService: documentService, storeDriver: storeDriver}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.documentService.Ready(c.Request.Context()); err != nil {
		logger.Get().Warn("readiness check failed", zap.String("store", h.storeDriver), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": h.storeDriver + " store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.storeDriver})
}
