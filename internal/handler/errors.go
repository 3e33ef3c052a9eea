package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/internal/apperr"
	"grantpilot/pkg/logger"
)

// respondError maps the apperr taxonomy onto a status and {"error": ...}.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	log = logger.WithTrace(c.Request.Context(), log)

	var ext *apperr.ExternalServiceError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		log.Warn("Record not found", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.Message(err)})
	case errors.Is(err, apperr.ErrValidation):
		log.Warn("Invalid request", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Message(err)})
	case errors.As(err, &ext):
		log.Error("AI service error", zap.String("service", ext.Service), zap.Error(ext.Err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service error: " + ext.Err.Error()})
	default:
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest reports a body that failed to bind or validate.
func badRequest(c *gin.Context, log *zap.Logger, err error) {
	logger.WithTrace(c.Request.Context(), log).Warn("Invalid request body",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
