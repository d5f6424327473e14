package editor

import (
	"context"
	"errors"
	"testing"

	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/draft"
	"footprint-app/internal/pages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGate struct {
	own pages.Ownership
	err error
}

func (s stubGate) Ownership(context.Context, string) (pages.Ownership, error) {
	return s.own, s.err
}

func TestOpen_OwnedPageIsRemote(t *testing.T) {
	drafts := draft.New(draft.NewMemoryBackend(), nil)
	drafts.Save("fp-1002-ab12", draft.Draft{Name: "stale"})

	gate := stubGate{own: pages.Ownership{
		Owned:   true,
		Page:    &site.Footprint{ID: "p1", Slug: "fp-1002-ab12"},
		Content: []tiles.ContentTile{{ID: "t1"}},
	}}
	s, err := New(gate, drafts, nil).Open(context.Background(), "fp-1002-ab12")
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, s.Mode)
	assert.Equal(t, "p1", s.Page.ID)
	assert.Len(t, s.Content, 1)
	assert.Nil(t, s.Draft)
	assert.True(t, drafts.Exists("fp-1002-ab12"), "gate path does not touch drafts")
}

func TestOpen_NotOwnedUsesDraft(t *testing.T) {
	drafts := draft.New(draft.NewMemoryBackend(), nil)
	ed := New(stubGate{}, drafts, nil)

	s, err := ed.Open(context.Background(), "fp-1002-ab12")
	require.NoError(t, err)
	assert.Equal(t, ModeDraft, s.Mode)
	require.NotNil(t, s.Draft)
	assert.Empty(t, s.Draft.Tiles)
	assert.True(t, drafts.Exists("fp-1002-ab12"), "empty draft created")

	drafts.Save("fp-1002-ab12", draft.Draft{Name: "mine"})
	s, err = ed.Open(context.Background(), "fp-1002-ab12")
	require.NoError(t, err)
	assert.Equal(t, "mine", s.Draft.Name)
}

func TestOpen_GateErrorPropagates(t *testing.T) {
	drafts := draft.New(draft.NewMemoryBackend(), nil)
	_, err := New(stubGate{err: errors.New("offline")}, drafts, nil).Open(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, drafts.Exists("x"))
}

func TestPromoteAndDiscard(t *testing.T) {
	drafts := draft.New(draft.NewMemoryBackend(), nil)
	ed := New(stubGate{}, drafts, nil)

	_, ok := ed.Promote("fp-1002-ab12")
	assert.False(t, ok)

	drafts.Save("fp-1002-ab12", draft.Draft{Name: "mine"})
	d, ok := ed.Promote("fp-1002-ab12")
	require.True(t, ok)
	assert.Equal(t, "mine", d.Name)
	assert.False(t, drafts.Exists("fp-1002-ab12"))

	drafts.Save("fp-1002-ab12", draft.Draft{})
	ed.Discard("fp-1002-ab12")
	assert.False(t, drafts.Exists("fp-1002-ab12"))
}
