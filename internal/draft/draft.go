// Package draft is the client-side staging area for pages the user does not
// own yet. Every failure is logged and swallowed: drafts are best effort.
package draft

import (
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"time"

	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/logger"

	"go.uber.org/zap"
)

// Tile is a draft tile, flat like a content tile.
type Tile struct {
	ID string `json:"id"`
	tiles.Embed
	Position int `json:"position"`
}

// Draft is an unsynced page keyed by slug.
type Draft struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	ThemeID     string    `json:"theme_id"`
	Tiles       []Tile    `json:"tiles"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Backend stores raw draft documents. Read returns an error wrapping
// fs.ErrNotExist when slug has no draft.
type Backend interface {
	Read(slug string) ([]byte, error)
	Write(slug string, data []byte) error
	Remove(slug string) error
}

type Cache struct {
	backend Backend
	now     func() time.Time
	log     *zap.Logger
}

func New(backend Backend, log *zap.Logger) *Cache {
	return &Cache{backend: backend, now: time.Now, log: logger.OrNop(log)}
}

func key(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// Load returns the draft for slug. A missing or unreadable draft reads as absent.
func (c *Cache) Load(slug string) (Draft, bool) {
	raw, err := c.backend.Read(key(slug))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("draft read failed", zap.String("slug", slug), zap.Error(err))
		}
		return Draft{}, false
	}

	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		c.log.Warn("draft corrupt, ignoring", zap.String("slug", slug), zap.Error(err))
		return Draft{}, false
	}
	return d, true
}

// Save overwrites the draft for slug and returns what was stored. UpdatedAt is
// stamped with the current time, never earlier than d.UpdatedAt.
func (c *Cache) Save(slug string, d Draft) Draft {
	now := c.now().UTC()
	if now.Before(d.UpdatedAt) {
		now = d.UpdatedAt.UTC()
	}
	d.UpdatedAt = now
	d.Slug = key(slug)
	if d.Tiles == nil {
		d.Tiles = []Tile{}
	}

	raw, err := json.Marshal(d)
	if err != nil {
		c.log.Warn("draft encode failed", zap.String("slug", slug), zap.Error(err))
		return d
	}
	if err := c.backend.Write(key(slug), raw); err != nil {
		c.log.Warn("draft write failed", zap.String("slug", slug), zap.Error(err))
	}
	return d
}

// Clear removes the draft for slug. Clearing an absent draft is a no-op.
func (c *Cache) Clear(slug string) {
	err := c.backend.Remove(key(slug))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("draft clear failed", zap.String("slug", slug), zap.Error(err))
	}
}

func (c *Cache) Exists(slug string) bool {
	_, ok := c.Load(slug)
	return ok
}
