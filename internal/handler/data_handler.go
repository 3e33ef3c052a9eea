package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/internal/service/calendar"
	"grantpilot/internal/service/portability"
	"grantpilot/internal/service/seed"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DataHandler serves calendar export, bulk export/import and demo seeding.
type DataHandler struct {
	calendar    *calendar.Service
	portability *portability.Service
	seed        *seed.Service
	logger      *zap.Logger
}

func NewDataHandler(cal *calendar.Service, port *portability.Service, sd *seed.Service, logger *zap.Logger) *DataHandler {
	return &DataHandler{calendar: cal, portability: port, seed: sd, logger: logger}
}

// Calendar handles GET /calendar/export[?format=ics]
func (h *DataHandler) Calendar(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("format") == "ics" {
		feed, err := h.calendar.ICS(ctx)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="grantpilot-deadlines.ics"`)
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
		return
	}

	events, err := h.calendar.Events(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Export handles GET /export[?format=xlsx]
func (h *DataHandler) Export(c *gin.Context) {
	bundle, err := h.portability.Export(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if c.Query("format") != "xlsx" {
		c.JSON(http.StatusOK, bundle)
		return
	}

	data, err := portability.XLSX(bundle)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	name := fmt.Sprintf("grantpilot-export-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Import handles POST /import
func (h *DataHandler) Import(c *gin.Context) {
	var bundle portability.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	counts, err := h.portability.Import(c.Request.Context(), bundle)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": true, "counts": counts})
}

// Seed handles POST /seed-demo
func (h *DataHandler) Seed(c *gin.Context) {
	res, err := h.seed.Seed(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
