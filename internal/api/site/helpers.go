package siteapi

import (
	"strings"

	"footprint-app/internal/embed"
	"footprint-app/internal/tilestore"
)

// BuildPayload runs the URL through the embed parser and applies the
// caller's overrides.
func BuildPayload(req AddTileRequest) tilestore.Payload {
	p := tilestore.Payload{ImageURL: strings.TrimSpace(req.ImageURL), RoomID: req.RoomID}
	if u := strings.TrimSpace(req.URL); u != "" {
		p.Embed = embed.Parse(u)
	}
	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	return p
}
