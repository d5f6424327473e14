// Package tilestore keeps the ordered tile collections of a page: content
// scoped by page id, links and library items scoped by owner serial.
package tilestore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/logger"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const DefaultConcurrency = 8

type collection struct {
	table    string
	scopeCol string
	model    func() any
}

var collections = map[tiles.Kind]collection{
	tiles.KindContent: {table: "content_tiles", scopeCol: "page_id", model: func() any { return &tiles.ContentTile{} }},
	tiles.KindLinks:   {table: "link_tiles", scopeCol: "owner_serial", model: func() any { return &tiles.LinkTile{} }},
	tiles.KindLibrary: {table: "library_items", scopeCol: "owner_serial", model: func() any { return &tiles.LibraryItem{} }},
}

// Payload is what Add stores. Content and links use Embed; library items use
// ImageURL. RoomID is only honored for links and library items.
type Payload struct {
	tiles.Embed
	ImageURL string
	RoomID   *string
}

// Move sets one tile's position.
type Move struct {
	ID       string `json:"id" binding:"required"`
	Position int    `json:"position"`
}

// ReorderResult lists which moves landed. Rejected ids were not found in the
// claimed scope; Failed ids hit a storage error.
type ReorderResult struct {
	Applied  []string `json:"applied"`
	Rejected []string `json:"rejected"`
	Failed   []string `json:"failed"`
}

func (r ReorderResult) Success() bool {
	return len(r.Rejected) == 0 && len(r.Failed) == 0
}

type Store struct {
	db          *gorm.DB
	concurrency int
	text        *bluemonday.Policy
	log         *zap.Logger
}

func New(db *gorm.DB, concurrency int, log *zap.Logger) *Store {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Store{
		db:          db,
		concurrency: concurrency,
		text:        bluemonday.StrictPolicy(),
		log:         logger.OrNop(log),
	}
}

func lookup(kind tiles.Kind, scope tiles.Scope) (collection, error) {
	c, ok := collections[kind]
	if !ok {
		return collection{}, apperr.Validation("Unknown collection %q", kind)
	}
	if scope.Kind() != kind.ScopeKind() {
		return collection{}, apperr.Validation("Collection %s is scoped by %s, got %s", kind, kind.ScopeKind(), scope)
	}
	if scope.Kind() == tiles.ScopeSerial && scope.Serial <= 0 {
		return collection{}, apperr.Validation("Scope serial is required")
	}
	return c, nil
}

func (s *Store) nextPosition(tx *gorm.DB, c collection, scope tiles.Scope) (int, error) {
	var max int
	err := tx.Table(c.table).
		Where(c.scopeCol+" = ?", scope.Key()).
		Select("COALESCE(MAX(position), -1)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Add appends a tile at max(position)+1 in its scope (0 for an empty scope).
// Two concurrent adds to one scope may receive the same position.
func (s *Store) Add(ctx context.Context, kind tiles.Kind, scope tiles.Scope, p Payload) (tiles.Entry, error) {
	c, err := lookup(kind, scope)
	if err != nil {
		return tiles.Entry{}, err
	}

	p.URL = strings.TrimSpace(p.URL)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Title = s.text.Sanitize(p.Title)
	p.Description = s.text.Sanitize(p.Description)
	if p.Type == "" {
		p.Type = "link"
	}

	switch kind {
	case tiles.KindLibrary:
		if p.ImageURL == "" {
			return tiles.Entry{}, apperr.Validation("image_url is required")
		}
	default:
		if p.URL == "" {
			return tiles.Entry{}, apperr.Validation("url is required")
		}
	}

	db := s.db.WithContext(ctx)
	if kind.HasRooms() && p.RoomID != nil {
		if err := s.checkRoom(db, scope.Serial, *p.RoomID); err != nil {
			return tiles.Entry{}, err
		}
	}

	pos, err := s.nextPosition(db, c, scope)
	if err != nil {
		return tiles.Entry{}, apperr.FromDB(err, "Failed to read positions")
	}

	var created tiles.Tile
	switch kind {
	case tiles.KindContent:
		t := &tiles.ContentTile{PageID: scope.PageID, Embed: p.Embed, Position: pos}
		err = db.Create(t).Error
		created = *t
	case tiles.KindLinks:
		t := &tiles.LinkTile{OwnerSerial: scope.Serial, RoomID: p.RoomID, Embed: p.Embed, Position: pos}
		err = db.Create(t).Error
		created = *t
	case tiles.KindLibrary:
		t := &tiles.LibraryItem{OwnerSerial: scope.Serial, RoomID: p.RoomID, ImageURL: p.ImageURL, Position: pos}
		err = db.Create(t).Error
		created = *t
	}
	if err != nil {
		return tiles.Entry{}, apperr.FromDB(err, "Failed to create tile")
	}
	return tiles.NewEntry(created), nil
}

// Reorder applies every move concurrently, at most s.concurrency in flight.
// It is not atomic: on error some moves may have landed, and callers must
// re-read the scope. Each update is filtered by the scope key, so ids from
// another page or owner are rejected instead of moved.
func (s *Store) Reorder(ctx context.Context, kind tiles.Kind, scope tiles.Scope, moves []Move) (ReorderResult, error) {
	c, err := lookup(kind, scope)
	if err != nil {
		return ReorderResult{}, err
	}
	if len(moves) == 0 {
		return ReorderResult{}, apperr.Validation("items required")
	}
	seen := make(map[string]bool, len(moves))
	for _, m := range moves {
		if m.ID == "" {
			return ReorderResult{}, apperr.Validation("item id required")
		}
		if seen[m.ID] {
			return ReorderResult{}, apperr.Validation("duplicate item %s", m.ID)
		}
		seen[m.ID] = true
	}

	var (
		mu     sync.Mutex
		result ReorderResult
		errs   []error
		g      errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, m := range moves {
		g.Go(func() error {
			res := s.db.WithContext(ctx).
				Model(c.model()).
				Where("id = ? AND "+c.scopeCol+" = ?", m.ID, scope.Key()).
				Update("position", m.Position)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case res.Error != nil:
				result.Failed = append(result.Failed, m.ID)
				errs = append(errs, res.Error)
			case res.RowsAffected == 0:
				result.Rejected = append(result.Rejected, m.ID)
			default:
				result.Applied = append(result.Applied, m.ID)
			}
			// keep going: one failed move does not cancel the rest
			return nil
		})
	}
	_ = g.Wait()

	if len(result.Rejected) > 0 {
		s.log.Warn("reorder rejected tiles outside scope",
			zap.String("collection", string(kind)),
			zap.String("scope", scope.String()),
			zap.Strings("ids", result.Rejected))
	}
	if len(errs) > 0 {
		s.log.Warn("reorder partially failed",
			zap.String("collection", string(kind)),
			zap.String("scope", scope.String()),
			zap.Int("failed", len(result.Failed)),
			zap.Int("applied", len(result.Applied)))
		return result, apperr.Unavailable(errors.Join(errs...), "Reorder partially applied, re-read the page")
	}
	return result, nil
}

// Delete removes id only when its stored scope matches. It returns the number
// of rows removed; 0 means not found in this scope, not an error.
func (s *Store) Delete(ctx context.Context, kind tiles.Kind, scope tiles.Scope, id string) (int64, error) {
	c, err := lookup(kind, scope)
	if err != nil {
		return 0, err
	}
	if id == "" {
		return 0, apperr.Validation("id is required")
	}

	res := s.db.WithContext(ctx).
		Where("id = ? AND "+c.scopeCol+" = ?", id, scope.Key()).
		Delete(c.model())
	if res.Error != nil {
		return 0, apperr.FromDB(res.Error, "Failed to delete tile")
	}
	return res.RowsAffected, nil
}
