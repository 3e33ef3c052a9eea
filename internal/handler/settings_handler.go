package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/internal/model"
	"grantpilot/internal/repository"
)

type SettingsHandler struct {
	repo   *repository.SettingsRepository
	logger *zap.Logger
}

func NewSettingsHandler(repo *repository.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{repo: repo, logger: logger}
}

// Get handles GET /settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.repo.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Put handles PUT /settings
func (h *SettingsHandler) Put(c *gin.Context) {
	var settings model.OrgSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if err := h.repo.Put(c.Request.Context(), &settings); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, &settings)
}
