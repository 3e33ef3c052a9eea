package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/internal/service/dashboard"
)

type DashboardHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get handles GET /dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
