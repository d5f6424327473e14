package tilestore

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"footprint-app/database"
	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/tiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(database.OpenTestDB(t), 4, nil)
}

func embed(url string) Payload {
	return Payload{Embed: tiles.Embed{URL: url, Type: "link", Title: url}}
}

func ids(entries []tiles.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Tile.TileID())
	}
	return out
}

func TestAdd_PositionsAreSequentialInEmptyScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := tiles.PageScope("9b2f3c1e-0000-4000-8000-000000000001")

	for want := 0; want < 3; want++ {
		e, err := store.Add(ctx, tiles.KindContent, scope, embed(fmt.Sprintf("https://example.com/%d", want)))
		require.NoError(t, err)
		assert.Equal(t, tiles.KindContent, e.Source)
		assert.Equal(t, want, e.Tile.TilePosition())
	}

	list, err := store.List(ctx, tiles.KindContent, scope)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, e := range list {
		assert.Equal(t, i, e.Tile.TilePosition())
	}
}

func TestAdd_ScopesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1002), embed("https://a.example"))
	require.NoError(t, err)
	_, err = store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1002), embed("https://b.example"))
	require.NoError(t, err)

	e, err := store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1003), embed("https://c.example"))
	require.NoError(t, err)
	assert.Equal(t, 0, e.Tile.TilePosition())

	lib, err := store.Add(ctx, tiles.KindLibrary, tiles.SerialScope(1002), Payload{ImageURL: "https://img.example/1.png"})
	require.NoError(t, err)
	assert.Equal(t, tiles.KindLibrary, lib.Source)
	assert.Equal(t, 0, lib.Tile.TilePosition(), "library positions are separate from links")
}

func TestAdd_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, tiles.KindContent, tiles.SerialScope(1002), embed("https://x.example"))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "content needs a page scope")

	_, err = store.Add(ctx, tiles.KindLinks, tiles.PageScope("p1"), embed("https://x.example"))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "links need a serial scope")

	_, err = store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1002), Payload{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = store.Add(ctx, tiles.KindLibrary, tiles.SerialScope(1002), embed("https://x.example"))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "library needs image_url")

	missing := "00000000-0000-4000-8000-000000000000"
	_, err = store.Add(ctx, tiles.KindLinks, tiles.SerialScope(1002), Payload{Embed: tiles.Embed{URL: "https://x.example"}, RoomID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdd_SanitizesText(t *testing.T) {
	store := newTestStore(t)
	p := embed("https://x.example")
	p.Title = `<script>alert(1)</script>Hello`

	e, err := store.Add(context.Background(), tiles.KindLinks, tiles.SerialScope(1002), p)
	require.NoError(t, err)
	assert.Equal(t, "Hello", e.Tile.(tiles.LinkTile).Title)
}

func TestReorder_SwapAndIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := tiles.PageScope("page-a")

	first, err := store.Add(ctx, tiles.KindContent, scope, embed("https://1.example"))
	require.NoError(t, err)
	second, err := store.Add(ctx, tiles.KindContent, scope, embed("https://2.example"))
	require.NoError(t, err)

	moves := []Move{
		{ID: first.Tile.TileID(), Position: 1},
		{ID: second.Tile.TileID(), Position: 0},
	}

	res, err := store.Reorder(ctx, tiles.KindContent, scope, moves)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Len(t, res.Applied, 2)

	once, err := store.List(ctx, tiles.KindContent, scope)
	require.NoError(t, err)

	_, err = store.Reorder(ctx, tiles.KindContent, scope, moves)
	require.NoError(t, err)
	twice, err := store.List(ctx, tiles.KindContent, scope)
	require.NoError(t, err)

	assert.Equal(t, []string{second.Tile.TileID(), first.Tile.TileID()}, ids(once))
	assert.Equal(t, ids(once), ids(twice))
}

func TestReorder_RejectsTilesOutsideScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mine, err := store.Add(ctx, tiles.KindContent, tiles.PageScope("page-a"), embed("https://1.example"))
	require.NoError(t, err)
	theirs, err := store.Add(ctx, tiles.KindContent, tiles.PageScope("page-b"), embed("https://2.example"))
	require.NoError(t, err)

	res, err := store.Reorder(ctx, tiles.KindContent, tiles.PageScope("page-a"), []Move{
		{ID: mine.Tile.TileID(), Position: 5},
		{ID: theirs.Tile.TileID(), Position: 7},
	})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, []string{mine.Tile.TileID()}, res.Applied)
	assert.Equal(t, []string{theirs.Tile.TileID()}, res.Rejected)

	got, err := store.Get(ctx, tiles.KindContent, tiles.PageScope("page-b"), theirs.Tile.TileID())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Tile.TilePosition(), "foreign tile untouched")
}

func TestReorder_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := tiles.PageScope("page-a")

	_, err := store.Reorder(ctx, tiles.KindContent, scope, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = store.Reorder(ctx, tiles.KindContent, scope, []Move{{ID: "a"}, {ID: "a", Position: 1}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestReorder_ManyMovesWithBoundedConcurrency(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := tiles.SerialScope(1002)

	var moves []Move
	for i := 0; i < 25; i++ {
		e, err := store.Add(ctx, tiles.KindLinks, scope, embed(fmt.Sprintf("https://%d.example", i)))
		require.NoError(t, err)
		moves = append(moves, Move{ID: e.Tile.TileID(), Position: 24 - i})
	}

	res, err := store.Reorder(ctx, tiles.KindLinks, scope, moves)
	require.NoError(t, err)
	assert.Len(t, res.Applied, 25)

	list, err := store.List(ctx, tiles.KindLinks, scope)
	require.NoError(t, err)
	assert.Equal(t, moves[24].ID, list[0].Tile.TileID())
	assert.Equal(t, moves[0].ID, list[24].Tile.TileID())
}

func TestDelete_Scoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	x, err := store.Add(ctx, tiles.KindLibrary, tiles.SerialScope(1002), Payload{ImageURL: "https://img.example/x.png"})
	require.NoError(t, err)

	n, err := store.Delete(ctx, tiles.KindLibrary, tiles.SerialScope(1003), x.Tile.TileID())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Get(ctx, tiles.KindLibrary, tiles.SerialScope(1002), x.Tile.TileID())
	require.NoError(t, err, "tile still retrievable")

	n, err = store.Delete(ctx, tiles.KindLibrary, tiles.SerialScope(1002), x.Tile.TileID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Delete(ctx, tiles.KindLibrary, tiles.SerialScope(1002), x.Tile.TileID())
	require.NoError(t, err)
	assert.Zero(t, n, "second delete is a no-op")
}

func TestScenario_AddReorderDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := tiles.PageScope("page-1002")

	first, err := store.Add(ctx, tiles.KindContent, scope, embed("https://youtube.com/watch?v=abc"))
	require.NoError(t, err)
	assert.Equal(t, 0, first.Tile.TilePosition())

	second, err := store.Add(ctx, tiles.KindContent, scope, embed("https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Tile.TilePosition())

	_, err = store.Reorder(ctx, tiles.KindContent, scope, []Move{
		{ID: first.Tile.TileID(), Position: 1},
		{ID: second.Tile.TileID(), Position: 0},
	})
	require.NoError(t, err)

	content, err := store.ListContent(ctx, "page-1002")
	require.NoError(t, err)
	require.Len(t, content, 2)
	assert.Equal(t, second.Tile.TileID(), content[0].ID)
	assert.Equal(t, first.Tile.TileID(), content[1].ID)

	n, err := store.Delete(ctx, tiles.KindContent, scope, first.Tile.TileID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	content, err = store.ListContent(ctx, "page-1002")
	require.NoError(t, err)
	assert.Len(t, content, 1)
}

func TestEntryMarshalsSource(t *testing.T) {
	store := newTestStore(t)
	e, err := store.Add(context.Background(), tiles.KindLinks, tiles.SerialScope(1002), embed("https://x.example"))
	require.NoError(t, err)

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "links", body["source"])
	assert.Equal(t, "https://x.example", body["url"])
	assert.Equal(t, float64(0), body["position"])
}
