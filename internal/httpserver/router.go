package httpserver

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"grantpilot/internal/handler"
	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/pkg/metrics"
	"grantpilot/pkg/otel"
	"grantpilot/pkg/trace"
)

const banner = "GrantPilot API - Grant Management for Small Nonprofits"

// Pinger is satisfied by the document store and the Redis wrapper.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Repos     *repository.Repositories
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
	AI        *handler.AIHandler
	Data      *handler.DataHandler
	// Admin is nil when the outbox is unavailable (memory driver).
	Admin *handler.AdminHandler
}

type Options struct {
	CORSOrigins []string
	Store       Pinger
	// Publisher reports broker health; nil skips the check.
	Publisher interface{ IsConnected() bool }
}

func NewRouter(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(opts.CORSOrigins))
	r.Use(traceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(requestLogger(logger))

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if opts.Store != nil {
			if err := opts.Store.Ping(ctx); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if opts.Publisher != nil && !opts.Publisher.IsConnected() {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": banner})
	})
	api.GET("/dashboard", h.Dashboard.Get)

	repos := h.Repos
	handler.NewResource[model.ContentItem, model.ContentItemUpdate](repos.Content, "category", logger).Register(api, "/content")
	handler.NewResource[model.FunderProfile, model.FunderUpdate](repos.Funders, "", logger).Register(api, "/funders")
	handler.NewResource[model.Grant, model.GrantUpdate](repos.Grants, "stage", logger).
		WithDelete(repos.DeleteGrant).
		Register(api, "/grants")
	handler.NewResource[model.ReportingRequirement, model.ReportingUpdate](repos.Reporting, "grant_id", logger).Register(api, "/reporting")
	handler.NewResource[model.ComplianceItem, model.ComplianceUpdate](repos.Compliance, "grant_id", logger).Register(api, "/compliance")
	handler.NewResource[model.BudgetTemplate, model.BudgetUpdate](repos.Budgets, "grant_id", logger).Register(api, "/budgets")
	handler.NewResource[model.OutcomeMetric, model.OutcomeUpdate](repos.Outcomes, "program", logger).Register(api, "/outcomes")

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Put)

	api.POST("/ai/extract-award", h.AI.ExtractAward)
	api.POST("/ai/draft", h.AI.Draft)

	api.GET("/calendar/export", h.Data.Calendar)
	api.GET("/export", h.Data.Export)
	api.POST("/import", h.Data.Import)
	api.POST("/seed-demo", h.Data.Seed)

	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
		admin.POST("/outbox/reset-failed", h.Admin.ResetFailedEvents)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", trace.HeaderName},
		ExposeHeaders:    []string{trace.HeaderName, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// traceMiddleware reuses an incoming X-Trace-ID or mints one, and echoes it.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName)
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), latency)

		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("trace_id", trace.FromContext(c.Request.Context())),
		)
	}
}
