package tiles

import "encoding/json"

// Entry is a tile tagged with its source collection. It marshals as the
// tile's own fields plus "source".
type Entry struct {
	Source Kind
	Tile   Tile
}

func NewEntry(t Tile) Entry {
	return Entry{Source: t.TileKind(), Tile: t}
}

func (e Entry) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Tile)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	src, _ := json.Marshal(e.Source)
	fields["source"] = src
	return json.Marshal(fields)
}
