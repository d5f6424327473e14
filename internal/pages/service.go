package pages

import (
	"context"
	"strings"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/access"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/logger"
	"footprint-app/internal/tilestore"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MetadataUpdate carries the display fields an owner may change. Nil fields are left as is.
type MetadataUpdate struct {
	Name        *string `json:"name"`
	Icon        *string `json:"icon"`
	DisplayName *string `json:"display_name"`
	Handle      *string `json:"handle"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	ThemeID     *string `json:"theme_id"`
	IsPublic    *bool   `json:"is_public"`
}

// PublicView is what a passive viewer sees of a page.
type PublicView struct {
	Page    site.Footprint      `json:"page"`
	Serial  int64               `json:"serial"`
	Content []tiles.ContentTile `json:"content"`
	Links   []tiles.LinkTile    `json:"links"`
	Library []tiles.LibraryItem `json:"library"`
	Rooms   []tiles.Room        `json:"rooms"`
}

type Service struct {
	db    *gorm.DB
	gate  *Gate
	pages *Resolver
	tiles *tilestore.Store
	text  *bluemonday.Policy
	log   *zap.Logger
}

func NewService(db *gorm.DB, pages *Resolver, gate *Gate, store *tilestore.Store, log *zap.Logger) *Service {
	return &Service{
		db:    db,
		gate:  gate,
		pages: pages,
		tiles: store,
		text:  bluemonday.StrictPolicy(),
		log:   logger.OrNop(log),
	}
}

// UpdateMetadata applies upd to the caller's page under slug.
func (s *Service) UpdateMetadata(ctx context.Context, caller *access.Identity, slug string, upd MetadataUpdate) (site.Footprint, error) {
	page, err := s.gate.RequireOwner(ctx, caller, slug)
	if err != nil {
		return site.Footprint{}, err
	}

	updates := map[string]any{}
	setText := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(s.text.Sanitize(*v))
		}
	}
	setText("name", upd.Name)
	setText("icon", upd.Icon)
	setText("display_name", upd.DisplayName)
	setText("bio", upd.Bio)
	setText("avatar_url", upd.AvatarURL)
	setText("theme_id", upd.ThemeID)
	if upd.Handle != nil {
		updates["handle"] = site.NormalizeSlug(*upd.Handle)
	}
	if upd.IsPublic != nil {
		updates["is_public"] = *upd.IsPublic
	}
	if len(updates) == 0 {
		return site.Footprint{}, apperr.Validation("No fields to update")
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&page).Updates(updates).Error; err != nil {
		return site.Footprint{}, apperr.FromDB(err, "Failed to update page")
	}
	if err := db.First(&page, "id = ?", page.ID).Error; err != nil {
		return site.Footprint{}, apperr.FromDB(err, "Failed to reload page")
	}
	return page, nil
}

// View returns a public page and counts the view. Hidden pages read as not
// found. Tile and room reads that fail degrade to empty lists.
func (s *Service) View(ctx context.Context, slug string) (PublicView, error) {
	page, err := s.pages.Page(ctx, slug)
	if err != nil {
		return PublicView{}, err
	}
	if !page.IsPublic {
		return PublicView{}, apperr.NotFound("Page not found")
	}
	serial, err := s.pages.Resolve(ctx, slug)
	if err != nil {
		return PublicView{}, err
	}

	res := s.db.WithContext(ctx).
		Model(&site.Footprint{}).
		Where("id = ?", page.ID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		s.log.Warn("view count failed", zap.String("slug", slug), zap.Error(res.Error))
	} else {
		page.Views++
	}

	view := PublicView{Page: page, Serial: serial}
	view.Content = degrade(s, "content", slug, func() ([]tiles.ContentTile, error) { return s.tiles.ListContent(ctx, page.ID) })
	view.Links = degrade(s, "links", slug, func() ([]tiles.LinkTile, error) { return s.tiles.ListLinks(ctx, serial) })
	view.Library = degrade(s, "library", slug, func() ([]tiles.LibraryItem, error) { return s.tiles.ListLibrary(ctx, serial) })
	view.Rooms = degrade(s, "rooms", slug, func() ([]tiles.Room, error) { return s.tiles.ListRooms(ctx, serial) })
	return view, nil
}

func degrade[T any](s *Service, what, slug string, load func() ([]T, error)) []T {
	out, err := load()
	if err != nil {
		s.log.Warn("public view read degraded",
			zap.String("slug", slug),
			zap.String("list", what),
			zap.Error(err))
		return []T{}
	}
	return out
}
