// Package pages resolves slugs to owners and decides page ownership.
package pages

import (
	"context"
	"errors"
	"strings"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/infra/cache"
	"footprint-app/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver maps a public slug to its owner's serial. Resolution is public
// metadata: it performs no ownership check.
type Resolver struct {
	db    *gorm.DB
	cache cache.SlugCache
	log   *zap.Logger
}

// NewResolver builds a Resolver. slugs may be nil to always read the database.
func NewResolver(db *gorm.DB, slugs cache.SlugCache, log *zap.Logger) *Resolver {
	return &Resolver{db: db, cache: slugs, log: logger.OrNop(log)}
}

// Resolve returns the serial owning slug, or a NotFound error.
func (r *Resolver) Resolve(ctx context.Context, slug string) (int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, apperr.Validation("Slug is required")
	}

	if r.cache != nil {
		serial, err := r.cache.Get(ctx, slug)
		if err == nil {
			return serial, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			r.log.Warn("slug cache read failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	var serials []int64
	err := r.db.WithContext(ctx).
		Table("footprints").
		Joins("JOIN users ON users.id = footprints.user_id").
		Where("footprints.slug = ?", slug).
		Limit(1).
		Pluck("users.serial", &serials).Error
	if err != nil {
		return 0, apperr.FromDB(err, "Failed to resolve slug")
	}
	if len(serials) == 0 {
		return 0, apperr.NotFound("Page %s not found", slug)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, slug, serials[0]); err != nil {
			r.log.Warn("slug cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return serials[0], nil
}

// Page loads the footprint stored under slug.
func (r *Resolver) Page(ctx context.Context, slug string) (site.Footprint, error) {
	var page site.Footprint
	err := r.db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).First(&page).Error
	if err != nil {
		return site.Footprint{}, apperr.FromDB(err, "Page not found")
	}
	return page, nil
}
