package siteapi

import (
	"footprint-app/internal/domain/site"
	"footprint-app/internal/tilestore"
)

// AddTileRequest carries a pasted URL. Title and Description override what
// the parser derives.
type AddTileRequest struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	RoomID      *string `json:"room_id"`
}

type ReorderRequest struct {
	Items []tilestore.Move `json:"items" binding:"required,dive"`
}

type ReorderResponse struct {
	Success bool `json:"success"`
	tilestore.ReorderResult
}

type DeleteResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

type ResolveResponse struct {
	Slug   string `json:"slug"`
	Serial int64  `json:"serial"`
}

type PageResponse struct {
	Page      site.Footprint `json:"page"`
	PublicURL string         `json:"public_url"`
}
