package siteapi

import (
	"net/http"

	"footprint-app/config"
	"footprint-app/internal/api/respond"
	"footprint-app/internal/apperr"
	"footprint-app/internal/app/http/middleware"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/pages"
	"footprint-app/internal/tilestore"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	resolver *pages.Resolver
	gate     *pages.Gate
	pages    *pages.Service
	tiles    *tilestore.Store
}

func NewHandler(resolver *pages.Resolver, gate *pages.Gate, svc *pages.Service, store *tilestore.Store) *Handler {
	return &Handler{resolver: resolver, gate: gate, pages: svc, tiles: store}
}

// GET /resolve/:slug
func (h *Handler) Resolve(c *gin.Context) {
	slug := c.Param("slug")
	serial, err := h.resolver.Resolve(c.Request.Context(), slug)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{Slug: slug, Serial: serial})
}

// GET /pages/:slug/ownership
func (h *Handler) Ownership(c *gin.Context) {
	own, err := h.gate.Check(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("slug"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, own)
}

// PUT /pages/:slug
func (h *Handler) UpdatePage(c *gin.Context) {
	var body pages.MetadataUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Invalid page fields")
		return
	}
	page, err := h.pages.UpdateMetadata(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("slug"), body)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, PageResponse{Page: page, PublicURL: site.BuildPublicURL(config.APP_URL, page.Slug)})
}

// GET /p/:slug
func (h *Handler) PublicView(c *gin.Context) {
	view, err := h.pages.View(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /pages/:slug/content
func (h *Handler) AddContent(c *gin.Context) {
	var body AddTileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Invalid tile")
		return
	}
	page, err := h.gate.RequireOwner(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("slug"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	p := BuildPayload(body)
	p.RoomID = nil
	entry, err := h.tiles.Add(c.Request.Context(), tiles.KindContent, tiles.PageScope(page.ID), p)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// PUT /pages/:slug/content/reorder
func (h *Handler) ReorderContent(c *gin.Context) {
	var body ReorderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "items required")
		return
	}
	page, err := h.gate.RequireOwner(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("slug"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	res, err := h.tiles.Reorder(c.Request.Context(), tiles.KindContent, tiles.PageScope(page.ID), body.Items)
	if err != nil && !apperr.Is(err, apperr.KindUnavailable) {
		respond.Error(c, err)
		return
	}
	WriteReorder(c, res, err)
}

// DELETE /pages/:slug/content/:id
func (h *Handler) DeleteContent(c *gin.Context) {
	page, err := h.gate.RequireOwner(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("slug"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	n, err := h.tiles.Delete(c.Request.Context(), tiles.KindContent, tiles.PageScope(page.ID), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Success: true, DeletedCount: n})
}

// WriteReorder reports a best-effort batch. A partially applied batch is a
// 503 that still lists what landed, so the client knows to re-read.
func WriteReorder(c *gin.Context, res tilestore.ReorderResult, err error) {
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":  false,
			"applied":  res.Applied,
			"rejected": res.Rejected,
			"failed":   res.Failed,
			"error":    "Reorder partially applied, re-read the page",
			"kind":     "unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, ReorderResponse{Success: res.Success(), ReorderResult: res})
}
