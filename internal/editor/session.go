// Package editor decides, per page load, whether the editor works on the
// persisted page or on a local draft.
package editor

import (
	"context"

	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/draft"
	"footprint-app/internal/logger"
	"footprint-app/internal/pages"

	"go.uber.org/zap"
)

type Mode string

const (
	ModeRemote Mode = "remote"
	ModeDraft  Mode = "draft"
)

// OwnershipChecker is the ownership gate as seen by the editor, usually over HTTP.
type OwnershipChecker interface {
	Ownership(ctx context.Context, slug string) (pages.Ownership, error)
}

// Session is an opened page. Page and Content are set in ModeRemote, Draft in ModeDraft.
type Session struct {
	Slug    string              `json:"slug"`
	Mode    Mode                `json:"mode"`
	Page    *site.Footprint     `json:"page,omitempty"`
	Content []tiles.ContentTile `json:"content,omitempty"`
	Draft   *draft.Draft        `json:"draft,omitempty"`
}

type Editor struct {
	gate   OwnershipChecker
	drafts *draft.Cache
	log    *zap.Logger
}

func New(gate OwnershipChecker, drafts *draft.Cache, log *zap.Logger) *Editor {
	return &Editor{gate: gate, drafts: drafts, log: logger.OrNop(log)}
}

// Open asks the gate first. An owned page opens remotely and leaves any local
// draft alone; otherwise the draft for slug is loaded, or an empty one is saved.
func (e *Editor) Open(ctx context.Context, slug string) (*Session, error) {
	own, err := e.gate.Ownership(ctx, slug)
	if err != nil {
		return nil, err
	}
	if own.Owned {
		return &Session{Slug: slug, Mode: ModeRemote, Page: own.Page, Content: own.Content}, nil
	}

	d, ok := e.drafts.Load(slug)
	if !ok {
		e.log.Debug("starting new draft", zap.String("slug", slug))
		d = e.drafts.Save(slug, draft.Draft{})
	}
	return &Session{Slug: slug, Mode: ModeDraft, Draft: &d}, nil
}

// Promote hands over the draft for migration into a claimed page and clears it.
func (e *Editor) Promote(slug string) (draft.Draft, bool) {
	d, ok := e.drafts.Load(slug)
	if !ok {
		return draft.Draft{}, false
	}
	e.drafts.Clear(slug)
	return d, true
}

// Discard drops the draft for slug.
func (e *Editor) Discard(slug string) {
	e.drafts.Clear(slug)
}
