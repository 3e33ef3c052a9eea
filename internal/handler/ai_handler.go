package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/internal/service/drafting"
	"grantpilot/internal/service/extraction"
	"grantpilot/pkg/logger"
)

type AIHandler struct {
	extraction *extraction.Service
	drafting   *drafting.Service
	logger     *zap.Logger
}

func NewAIHandler(ex *extraction.Service, dr *drafting.Service, logger *zap.Logger) *AIHandler {
	return &AIHandler{extraction: ex, drafting: dr, logger: logger}
}

// ExtractAward handles POST /ai/extract-award
func (h *AIHandler) ExtractAward(c *gin.Context) {
	var req extraction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("Received award extraction request",
		zap.String("grant_id", req.GrantID),
		zap.String("filename", req.Filename),
	)

	resp, err := h.extraction.ExtractAward(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Draft handles POST /ai/draft
func (h *AIHandler) Draft(c *gin.Context) {
	var req drafting.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	content, err := h.drafting.Draft(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}
