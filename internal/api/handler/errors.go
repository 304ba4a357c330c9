package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
	"github.com/timmy/epigraph/internal/service"
)

// respondError maps an orchestrator error to a status code and writes
// {"error": message}. fallback is shown for upstream failures.
func respondError(c *gin.Context, err error, fallback string) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case domain.IsValidation(err):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrBusy):
		status, message = http.StatusConflict, "Please wait for the current request to finish."
	case errors.Is(err, service.ErrSignInRequired):
		status, message = http.StatusUnauthorized, service.SignInRequiredMessage
	case domain.IsAIGateway(err), domain.IsPersistence(err):
		status, message = http.StatusBadGateway, fallback
	}

	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		logger.CtxError(ctx, "Request failed: status=%d, err=%v", status, err)
	} else {
		logger.CtxWarn(ctx, "Request rejected: status=%d, err=%v", status, err)
	}
	c.JSON(status, gin.H{"error": message})
}
