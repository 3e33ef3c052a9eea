package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/pkg/outbox"
)

type AdminHandler struct {
	repo          *outbox.Repository
	replayService *outbox.ReplayService
	logger        *zap.Logger
}

func NewAdminHandler(repo *outbox.Repository, replayService *outbox.ReplayService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		repo:          repo,
		replayService: replayService,
		logger:        logger,
	}
}

// ReplayFailedEvents republishes events that exhausted their retries.
// POST /admin/outbox/replay-failed?limit=100
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	replayed, err := h.replayService.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to replay failed events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to replay failed events",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "completed",
		"replayed_count": replayed,
		"limit":          limit,
	})
}

// ResetFailedEvents hands failed events back to the dispatcher.
// POST /admin/outbox/reset-failed
func (h *AdminHandler) ResetFailedEvents(c *gin.Context) {
	n, err := h.repo.ResetFailed(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to reset failed events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to reset failed events",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset", "reset_count": n})
}
