package tilestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/tiles"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultRoomNames are created by SeedRooms, at positions 0..N-1.
var DefaultRoomNames = []string{"Lobby", "Studio", "Gallery"}

// SeedResult reports a seeding run. When Seeded is false the scope already had
// rooms, nothing was written, and Message says so.
type SeedResult struct {
	Rooms        []tiles.Room   `json:"rooms"`
	Seeded       bool           `json:"seeded"`
	Message      string         `json:"message,omitempty"`
	Distribution map[string]int `json:"distribution,omitempty"`
}

func (s *Store) ListRooms(ctx context.Context, serial int64) ([]tiles.Room, error) {
	return listRooms(s.db.WithContext(ctx), serial)
}

func listRooms(db *gorm.DB, serial int64) ([]tiles.Room, error) {
	out := []tiles.Room{}
	err := db.Where("owner_serial = ?", serial).Order("position ASC, created_at ASC").Find(&out).Error
	return out, apperr.FromDB(err, "Failed to load rooms")
}

// CreateRoom appends a named room for serial.
func (s *Store) CreateRoom(ctx context.Context, serial int64, name string) (tiles.Room, error) {
	name = strings.TrimSpace(s.text.Sanitize(name))
	if name == "" {
		return tiles.Room{}, apperr.Validation("Room name is required")
	}
	if serial <= 0 {
		return tiles.Room{}, apperr.Validation("Scope serial is required")
	}

	db := s.db.WithContext(ctx)
	var max int
	if err := db.Model(&tiles.Room{}).
		Where("owner_serial = ?", serial).
		Select("COALESCE(MAX(position), -1)").
		Scan(&max).Error; err != nil {
		return tiles.Room{}, apperr.FromDB(err, "Failed to read rooms")
	}

	room := tiles.Room{OwnerSerial: serial, Name: name, Position: max + 1}
	if err := db.Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return tiles.Room{}, apperr.Conflict(err, "Room %q already exists", name)
		}
		return tiles.Room{}, apperr.FromDB(err, "Failed to create room")
	}
	return room, nil
}

func (s *Store) checkRoom(db *gorm.DB, serial int64, roomID string) error {
	var count int64
	if err := db.Model(&tiles.Room{}).
		Where("id = ? AND owner_serial = ?", roomID, serial).
		Count(&count).Error; err != nil {
		return apperr.FromDB(err, "Failed to read rooms")
	}
	if count == 0 {
		return apperr.NotFound("Room not found")
	}
	return nil
}

// AssignRoom sets or clears (roomID == nil) the room of a link or library tile.
// It returns the number of tiles updated; 0 means the tile is not in scope.
func (s *Store) AssignRoom(ctx context.Context, kind tiles.Kind, serial int64, id string, roomID *string) (int64, error) {
	if !kind.HasRooms() {
		return 0, apperr.Validation("Collection %s has no rooms", kind)
	}
	c, err := lookup(kind, tiles.SerialScope(serial))
	if err != nil {
		return 0, err
	}

	db := s.db.WithContext(ctx)
	if roomID != nil {
		if err := s.checkRoom(db, serial, *roomID); err != nil {
			return 0, err
		}
	}

	res := db.Model(c.model()).
		Where("id = ? AND owner_serial = ?", id, serial).
		Update("room_id", roomID)
	if res.Error != nil {
		return 0, apperr.FromDB(res.Error, "Failed to assign room")
	}
	return res.RowsAffected, nil
}

type roomRef struct {
	kind tiles.Kind
	id   string
}

// SeedRooms creates DefaultRoomNames for a serial that has no rooms and spreads
// its untagged links and library items across them: tiles are sorted by id and
// tile i goes to room i mod N. A scope that already has rooms is left untouched
// and its rooms are returned.
func (s *Store) SeedRooms(ctx context.Context, serial int64) (SeedResult, error) {
	if serial <= 0 {
		return SeedResult{}, apperr.Validation("Scope serial is required")
	}

	var out SeedResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := listRooms(tx, serial)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			out = SeedResult{
				Rooms:   existing,
				Message: fmt.Sprintf("already has %d rooms", len(existing)),
			}
			return nil
		}

		rooms := make([]tiles.Room, 0, len(DefaultRoomNames))
		for i, name := range DefaultRoomNames {
			r := tiles.Room{OwnerSerial: serial, Name: name, Position: i}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			rooms = append(rooms, r)
		}

		var refs []roomRef
		for _, kind := range []tiles.Kind{tiles.KindLinks, tiles.KindLibrary} {
			var ids []string
			if err := tx.Table(collections[kind].table).
				Where("owner_serial = ? AND room_id IS NULL", serial).
				Pluck("id", &ids).Error; err != nil {
				return err
			}
			for _, id := range ids {
				refs = append(refs, roomRef{kind: kind, id: id})
			}
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].id < refs[j].id })

		dist := make(map[string]int, len(rooms))
		for _, r := range rooms {
			dist[r.Name] = 0
		}
		for i, ref := range refs {
			room := rooms[i%len(rooms)]
			if err := tx.Model(collections[ref.kind].model()).
				Where("id = ? AND owner_serial = ?", ref.id, serial).
				Update("room_id", room.ID).Error; err != nil {
				return err
			}
			dist[room.Name]++
		}

		out = SeedResult{Rooms: rooms, Seeded: true, Distribution: dist}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent seed for the same serial committed first
		existing, lerr := s.ListRooms(ctx, serial)
		if lerr == nil && len(existing) > 0 {
			return SeedResult{
				Rooms:   existing,
				Message: fmt.Sprintf("already has %d rooms", len(existing)),
			}, nil
		}
	}
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return SeedResult{}, err
		}
		return SeedResult{}, apperr.FromDB(err, "Failed to seed rooms")
	}

	if out.Seeded {
		s.log.Info("rooms seeded", zap.Int64("serial", serial), zap.Any("distribution", out.Distribution))
	}
	return out, nil
}
