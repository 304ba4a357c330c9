package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/service"
)

// ScriptHandler serves the catalog of supported writing systems.
type ScriptHandler struct {
	catalog *service.ScriptCatalog
}

// NewScriptHandler creates a new script handler.
func NewScriptHandler(catalog *service.ScriptCatalog) *ScriptHandler {
	return &ScriptHandler{catalog: catalog}
}

// List handles GET /api/v1/scripts.
func (h *ScriptHandler) List(c *gin.Context) {
	scripts, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Could not load scripts.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scripts": scripts,
		"total":   len(scripts),
	})
}
