package tiles

import "fmt"

// Kind names the physical collection a tile lives in.
type Kind string

const (
	KindContent Kind = "content"
	KindLinks   Kind = "links"
	KindLibrary Kind = "library"
)

// ScopeKind says which key scopes a collection.
type ScopeKind string

const (
	ScopePage   ScopeKind = "page"
	ScopeSerial ScopeKind = "serial"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindContent, KindLinks, KindLibrary:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// ScopeKind reports the scoping key of k: content is scoped by page id,
// links and library by owner serial.
func (k Kind) ScopeKind() ScopeKind {
	if k == KindContent {
		return ScopePage
	}
	return ScopeSerial
}

// HasRooms reports whether tiles of k can be grouped into rooms.
func (k Kind) HasRooms() bool {
	return k == KindLinks || k == KindLibrary
}

// Scope is either a page id or an owner serial.
type Scope struct {
	PageID string
	Serial int64
}

func PageScope(pageID string) Scope { return Scope{PageID: pageID} }

func SerialScope(serial int64) Scope { return Scope{Serial: serial} }

func (s Scope) Kind() ScopeKind {
	if s.PageID != "" {
		return ScopePage
	}
	return ScopeSerial
}

func (s Scope) Key() any {
	if s.PageID != "" {
		return s.PageID
	}
	return s.Serial
}

func (s Scope) String() string {
	if s.PageID != "" {
		return "page:" + s.PageID
	}
	return fmt.Sprintf("serial:%d", s.Serial)
}
