package tilestore

import (
	"context"
	"fmt"
	"testing"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/tiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSeedRooms_DistributesUntaggedTiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := tiles.SerialScope(1002)

	for i := 0; i < 4; i++ {
		_, err := store.Add(ctx, tiles.KindLinks, scope, embed(fmt.Sprintf("https://%d.example", i)))
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := store.Add(ctx, tiles.KindLibrary, scope, Payload{ImageURL: fmt.Sprintf("https://img.example/%d.png", i)})
		require.NoError(t, err)
	}

	res, err := store.SeedRooms(ctx, 1002)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	require.Len(t, res.Rooms, len(DefaultRoomNames))
	for i, r := range res.Rooms {
		assert.Equal(t, i, r.Position)
		assert.Equal(t, DefaultRoomNames[i], r.Name)
	}

	total := 0
	for _, n := range res.Distribution {
		assert.True(t, n == 2 || n == 3, "7 tiles over 3 rooms: got %d", n)
		total += n
	}
	assert.Equal(t, 7, total)

	links, err := store.ListLinks(ctx, 1002)
	require.NoError(t, err)
	for _, l := range links {
		assert.NotNil(t, l.RoomID)
	}
}

func TestSeedRooms_RefusesDoubleSeed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.SeedRooms(ctx, 1002)
	require.NoError(t, err)
	require.True(t, first.Seeded)

	_, err = store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1002), embed("https://late.example"))
	require.NoError(t, err)

	second, err := store.SeedRooms(ctx, 1002)
	require.NoError(t, err)
	assert.False(t, second.Seeded)
	assert.Equal(t, fmt.Sprintf("already has %d rooms", len(DefaultRoomNames)), second.Message)
	assert.Len(t, second.Rooms, len(DefaultRoomNames))

	rooms, err := store.ListRooms(ctx, 1002)
	require.NoError(t, err)
	assert.Len(t, rooms, len(DefaultRoomNames), "room count unchanged")

	links, err := store.ListLinks(ctx, 1002)
	require.NoError(t, err)
	assert.Nil(t, links[0].RoomID, "refused seed does not distribute")
}

func TestSeedRooms_EmptyScope(t *testing.T) {
	store := newTestStore(t)
	res, err := store.SeedRooms(context.Background(), 1010)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	for _, n := range res.Distribution {
		assert.Zero(t, n)
	}
}

func TestAssignRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room, err := store.CreateRoom(ctx, 1002, "Music")
	require.NoError(t, err)
	assert.Equal(t, 0, room.Position)

	link, err := store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1002), embed("https://x.example"))
	require.NoError(t, err)

	n, err := store.AssignRoom(ctx, tiles.KindLinks, 1002, link.Tile.TileID(), &room.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.Get(ctx, tiles.KindLinks, tiles.SerialScope(1002), link.Tile.TileID())
	require.NoError(t, err)
	require.NotNil(t, got.Tile.(tiles.LinkTile).RoomID)
	assert.Equal(t, room.ID, *got.Tile.(tiles.LinkTile).RoomID)

	n, err = store.AssignRoom(ctx, tiles.KindLinks, 1002, link.Tile.TileID(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// another owner's room
	foreign, err := store.CreateRoom(ctx, 1003, "Music")
	require.NoError(t, err)
	_, err = store.AssignRoom(ctx, tiles.KindLinks, 1002, link.Tile.TileID(), &foreign.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = store.AssignRoom(ctx, tiles.KindContent, 1002, link.Tile.TileID(), &room.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateRoom_DuplicateNameConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, 1002, "Music")
	require.NoError(t, err)
	_, err = store.CreateRoom(ctx, 1002, "Music")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, apperr.Message(err), "already exists")

	_, err = store.CreateRoom(ctx, 1002, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateRoom_StorageFailureIsNotAConflict(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.db.Migrator().DropTable(&tiles.Room{}))

	_, err := store.CreateRoom(context.Background(), 1002, "Music")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.NotContains(t, apperr.Message(err), "already exists")
}

func TestSeedRooms_LosingConcurrentSeedReturnsExistingRooms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.SeedRooms(ctx, 1002)
	require.NoError(t, err)
	require.True(t, first.Seeded)

	// the next rooms read inside the seed transaction sees no rooms, as a
	// transaction started before the winner committed would
	stale := true
	require.NoError(t, store.db.Callback().Query().After("gorm:query").Register("test:stale_rooms", func(tx *gorm.DB) {
		if rooms, ok := tx.Statement.Dest.(*[]tiles.Room); ok && stale {
			stale = false
			*rooms = (*rooms)[:0]
		}
	}))

	res, err := store.SeedRooms(ctx, 1002)
	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Equal(t, fmt.Sprintf("already has %d rooms", len(DefaultRoomNames)), res.Message)
	assert.Len(t, res.Rooms, len(DefaultRoomNames))

	rooms, err := store.ListRooms(ctx, 1002)
	require.NoError(t, err)
	assert.Len(t, rooms, len(DefaultRoomNames))
}
