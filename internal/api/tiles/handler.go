// Package tilesapi serves the serial-scoped collections (links, library,
// rooms). Callers are scoped by the slug they name, see middleware.RequireSlugScope.
package tilesapi

import (
	"net/http"

	siteapi "footprint-app/internal/api/site"
	"footprint-app/internal/api/respond"
	"footprint-app/internal/apperr"
	"footprint-app/internal/app/http/middleware"
	"footprint-app/internal/domain/access"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/tilestore"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tiles *tilestore.Store
}

func NewHandler(store *tilestore.Store) *Handler {
	return &Handler{tiles: store}
}

func scope(c *gin.Context) (access.SlugCapability, bool) {
	capability, ok := middleware.SlugScope(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Slug scope missing"})
	}
	return capability, ok
}

func serialCollection(c *gin.Context) (tiles.Kind, bool) {
	kind, err := tiles.ParseKind(c.Param("collection"))
	if err != nil || kind.ScopeKind() != tiles.ScopeSerial {
		respond.Error(c, apperr.Validation("Collection must be links or library"))
		return "", false
	}
	return kind, true
}

func (h *Handler) add(c *gin.Context, kind tiles.Kind) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	var body siteapi.AddTileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Invalid tile")
		return
	}

	entry, err := h.tiles.Add(c.Request.Context(), kind, tiles.SerialScope(capability.Serial), siteapi.BuildPayload(body))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// POST /slugs/:slug/links
func (h *Handler) AddLink(c *gin.Context) { h.add(c, tiles.KindLinks) }

// POST /slugs/:slug/library
func (h *Handler) AddLibrary(c *gin.Context) { h.add(c, tiles.KindLibrary) }

// GET /slugs/:slug/:collection
func (h *Handler) List(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	kind, ok := serialCollection(c)
	if !ok {
		return
	}
	entries, err := h.tiles.List(c.Request.Context(), kind, tiles.SerialScope(capability.Serial))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// PUT /slugs/:slug/:collection/reorder
func (h *Handler) Reorder(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	kind, ok := serialCollection(c)
	if !ok {
		return
	}
	var body siteapi.ReorderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "items required")
		return
	}

	res, err := h.tiles.Reorder(c.Request.Context(), kind, tiles.SerialScope(capability.Serial), body.Items)
	if err != nil && !apperr.Is(err, apperr.KindUnavailable) {
		respond.Error(c, err)
		return
	}
	siteapi.WriteReorder(c, res, err)
}

// DELETE /slugs/:slug/:collection/:id
func (h *Handler) Delete(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	kind, ok := serialCollection(c)
	if !ok {
		return
	}
	n, err := h.tiles.Delete(c.Request.Context(), kind, tiles.SerialScope(capability.Serial), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, siteapi.DeleteResponse{Success: true, DeletedCount: n})
}

// PUT /slugs/:slug/:collection/:id/room
// Body {"room_id": "<id>"} assigns, {"room_id": null} clears.
func (h *Handler) AssignRoom(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	kind, ok := serialCollection(c)
	if !ok {
		return
	}
	var body struct {
		RoomID *string `json:"room_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Invalid room")
		return
	}

	n, err := h.tiles.AssignRoom(c.Request.Context(), kind, capability.Serial, c.Param("id"), body.RoomID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if n == 0 {
		respond.Error(c, apperr.NotFound("Tile not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /slugs/:slug/rooms
func (h *Handler) ListRooms(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	rooms, err := h.tiles.ListRooms(c.Request.Context(), capability.Serial)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// POST /slugs/:slug/rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Room name is required")
		return
	}
	room, err := h.tiles.CreateRoom(c.Request.Context(), capability.Serial, body.Name)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// POST /slugs/:slug/rooms/seed
func (h *Handler) SeedRooms(c *gin.Context) {
	capability, ok := scope(c)
	if !ok {
		return
	}
	res, err := h.tiles.SeedRooms(c.Request.Context(), capability.Serial)
	if err != nil {
		respond.Error(c, err)
		return
	}
	status := http.StatusCreated
	if !res.Seeded {
		status = http.StatusOK
	}
	c.JSON(status, res)
}
