package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	model string
}

// NewHealthHandler creates a new health handler reporting the configured model.
func NewHealthHandler(model string) *HealthHandler {
	return &HealthHandler{model: model}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  h.model,
	})
}
