package tilestore

import (
	"context"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/tiles"

	"gorm.io/gorm"
)

// Ties on position fall back to insertion order.
const displayOrder = "position ASC, created_at ASC, id ASC"

func scoped(db *gorm.DB, c collection, scope tiles.Scope) *gorm.DB {
	return db.Where(c.scopeCol+" = ?", scope.Key()).Order(displayOrder)
}

func (s *Store) ListContent(ctx context.Context, pageID string) ([]tiles.ContentTile, error) {
	out := []tiles.ContentTile{}
	err := scoped(s.db.WithContext(ctx), collections[tiles.KindContent], tiles.PageScope(pageID)).Find(&out).Error
	return out, apperr.FromDB(err, "Failed to load content")
}

func (s *Store) ListLinks(ctx context.Context, serial int64) ([]tiles.LinkTile, error) {
	out := []tiles.LinkTile{}
	err := scoped(s.db.WithContext(ctx), collections[tiles.KindLinks], tiles.SerialScope(serial)).Find(&out).Error
	return out, apperr.FromDB(err, "Failed to load links")
}

func (s *Store) ListLibrary(ctx context.Context, serial int64) ([]tiles.LibraryItem, error) {
	out := []tiles.LibraryItem{}
	err := scoped(s.db.WithContext(ctx), collections[tiles.KindLibrary], tiles.SerialScope(serial)).Find(&out).Error
	return out, apperr.FromDB(err, "Failed to load library")
}

// List returns one collection of a scope in display order, each tile tagged with its source.
func (s *Store) List(ctx context.Context, kind tiles.Kind, scope tiles.Scope) ([]tiles.Entry, error) {
	if _, err := lookup(kind, scope); err != nil {
		return nil, err
	}

	out := []tiles.Entry{}
	switch kind {
	case tiles.KindContent:
		rows, err := s.ListContent(ctx, scope.PageID)
		if err != nil {
			return nil, err
		}
		for _, t := range rows {
			out = append(out, tiles.NewEntry(t))
		}
	case tiles.KindLinks:
		rows, err := s.ListLinks(ctx, scope.Serial)
		if err != nil {
			return nil, err
		}
		for _, t := range rows {
			out = append(out, tiles.NewEntry(t))
		}
	case tiles.KindLibrary:
		rows, err := s.ListLibrary(ctx, scope.Serial)
		if err != nil {
			return nil, err
		}
		for _, t := range rows {
			out = append(out, tiles.NewEntry(t))
		}
	}
	return out, nil
}

// Get loads a single tile within scope.
func (s *Store) Get(ctx context.Context, kind tiles.Kind, scope tiles.Scope, id string) (tiles.Entry, error) {
	c, err := lookup(kind, scope)
	if err != nil {
		return tiles.Entry{}, err
	}

	m := c.model()
	err = s.db.WithContext(ctx).Where("id = ? AND "+c.scopeCol+" = ?", id, scope.Key()).First(m).Error
	if err != nil {
		return tiles.Entry{}, apperr.FromDB(err, "Tile not found")
	}

	switch t := m.(type) {
	case *tiles.ContentTile:
		return tiles.NewEntry(*t), nil
	case *tiles.LinkTile:
		return tiles.NewEntry(*t), nil
	case *tiles.LibraryItem:
		return tiles.NewEntry(*t), nil
	}
	return tiles.Entry{}, apperr.Validation("Unknown collection %q", kind)
}
