package pages

import (
	"context"
	"encoding/json"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/access"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/logger"
	"footprint-app/internal/tilestore"

	"go.uber.org/zap"
)

// Ownership is the gate's answer. Page and Content are only set when Owned.
// It marshals as {"owned":false} or {"owned":true,"page":...,"content":[...]}.
type Ownership struct {
	Owned   bool                `json:"owned"`
	Page    *site.Footprint     `json:"page,omitempty"`
	Content []tiles.ContentTile `json:"content,omitempty"`
}

func (o Ownership) MarshalJSON() ([]byte, error) {
	if !o.Owned {
		return []byte(`{"owned":false}`), nil
	}
	content := o.Content
	if content == nil {
		content = []tiles.ContentTile{}
	}
	return json.Marshal(struct {
		Owned   bool                `json:"owned"`
		Page    *site.Footprint     `json:"page"`
		Content []tiles.ContentTile `json:"content"`
	}{true, o.Page, content})
}

// Gate decides whether a verified caller owns a page. It only reads.
type Gate struct {
	pages *Resolver
	tiles *tilestore.Store
	log   *zap.Logger
}

func NewGate(pages *Resolver, store *tilestore.Store, log *zap.Logger) *Gate {
	return &Gate{pages: pages, tiles: store, log: logger.OrNop(log)}
}

// Check returns {Owned: false} for an anonymous caller, an unknown slug and a
// page owned by someone else alike. Only storage failures are errors.
func (g *Gate) Check(ctx context.Context, caller *access.Identity, slug string) (Ownership, error) {
	if caller == nil || caller.UserID == "" {
		return Ownership{}, nil
	}

	page, err := g.pages.Page(ctx, slug)
	if apperr.Is(err, apperr.KindNotFound) {
		return Ownership{}, nil
	}
	if err != nil {
		return Ownership{}, err
	}
	if !access.OwnsPage(caller, page.UserID) {
		return Ownership{}, nil
	}

	content, err := g.tiles.ListContent(ctx, page.ID)
	if err != nil {
		return Ownership{}, err
	}
	return Ownership{Owned: true, Page: &page, Content: content}, nil
}

// RequireOwner loads the page under slug for a mutation by its owner.
func (g *Gate) RequireOwner(ctx context.Context, caller *access.Identity, slug string) (site.Footprint, error) {
	if caller == nil || caller.UserID == "" {
		return site.Footprint{}, apperr.Forbidden("Sign in to edit %s", slug)
	}
	page, err := g.pages.Page(ctx, slug)
	if err != nil {
		return site.Footprint{}, err
	}
	if !access.OwnsPage(caller, page.UserID) {
		g.log.Warn("page mutation by non-owner",
			zap.String("slug", slug),
			zap.String("user_id", caller.UserID))
		return site.Footprint{}, apperr.Forbidden("You do not own %s", slug)
	}
	return page, nil
}

// SlugCapability resolves slug and wraps the owner serial in a capability for
// serial-scoped mutations. caller may be nil.
func (g *Gate) SlugCapability(ctx context.Context, caller *access.Identity, slug string) (access.SlugCapability, error) {
	serial, err := g.pages.Resolve(ctx, slug)
	if err != nil {
		return access.SlugCapability{}, err
	}
	return access.SlugCapability{Slug: slug, Serial: serial, Caller: caller}, nil
}
