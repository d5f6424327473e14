// Package events publishes identity and page lifecycle events for out-of-process
// consumers such as the draft migration worker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	TypeIdentityAllocated = "identity.allocated"
	TypePageClaimed       = "page.claimed"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Serial     int64     `json:"serial"`
	Slug       string    `json:"slug"`
	DraftSlug  string    `json:"draft_slug,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e Event) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	ch chan Event
}

func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Event, size)}
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	select {
	case r.ch <- e:
	default:
	}
	return nil
}

// Drain returns everything recorded so far.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-r.ch:
			out = append(out, e)
		default:
			return out
		}
	}
}
