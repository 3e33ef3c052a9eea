package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantpilot/internal/repository"
)

// Resource serves list/get/create/update/delete for one collection. T is the
// stored record and U its partial update body.
type Resource[T any, U any] struct {
	repo   *repository.Repository[T]
	filter string
	remove func(ctx context.Context, id string) error
	logger *zap.Logger
}

// NewResource builds a handler whose list endpoint filters on the query
// parameter named filter when it is present. filter may be empty.
func NewResource[T any, U any](repo *repository.Repository[T], filter string, logger *zap.Logger) *Resource[T, U] {
	return &Resource[T, U]{
		repo:   repo,
		filter: filter,
		remove: repo.Delete,
		logger: logger.With(zap.String("collection", repo.Collection())),
	}
}

// WithDelete replaces the delete operation, e.g. with a cascading one.
func (h *Resource[T, U]) WithDelete(fn func(ctx context.Context, id string) error) *Resource[T, U] {
	h.remove = fn
	return h
}

// Register mounts the five routes under g at path.
func (h *Resource[T, U]) Register(g *gin.RouterGroup, path string) {
	g.GET(path, h.List)
	g.POST(path, h.Create)
	g.GET(path+"/:id", h.Get)
	g.PUT(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}

func (h *Resource[T, U]) List(c *gin.Context) {
	var field, value string
	if h.filter != "" {
		if v := c.Query(h.filter); v != "" {
			field, value = h.filter, v
		}
	}

	items, err := h.repo.List(c.Request.Context(), field, value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Resource[T, U]) Get(c *gin.Context) {
	item, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Resource[T, U]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.repo.Create(c.Request.Context(), &item); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, &item)
}

func (h *Resource[T, U]) Update(c *gin.Context) {
	var patch U
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	item, err := h.repo.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Resource[T, U]) Delete(c *gin.Context) {
	if err := h.remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
