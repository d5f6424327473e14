package tiles

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tile is the shared trait of the three tile shapes.
type Tile interface {
	TileKind() Kind
	TileID() string
	TilePosition() int
}

// Embed is the parsed-content payload shared by content and link tiles.
type Embed struct {
	URL          string `gorm:"not null" json:"url"`
	Type         string `gorm:"not null;default:'link'" json:"type"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	EmbedHTML    string `json:"embed_html"`
	ExternalID   string `json:"external_id"`
}

// ContentTile is scoped by page id.
type ContentTile struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	PageID   string `gorm:"type:uuid;not null;index:idx_content_page_position,priority:1" json:"page_id"`
	Embed    `gorm:"embedded"`
	Position int `gorm:"not null;default:0;index:idx_content_page_position,priority:2" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContentTile) TableName() string { return "content_tiles" }

// LinkTile is scoped by owner serial.
type LinkTile struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerSerial int64   `gorm:"not null;index:idx_links_owner_position,priority:1" json:"owner_serial"`
	RoomID      *string `gorm:"type:uuid;index" json:"room_id"`
	Embed       `gorm:"embedded"`
	Position    int `gorm:"not null;default:0;index:idx_links_owner_position,priority:2" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LinkTile) TableName() string { return "link_tiles" }

// LibraryItem is an uploaded image scoped by owner serial.
type LibraryItem struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerSerial int64   `gorm:"not null;index:idx_library_owner_position,priority:1" json:"owner_serial"`
	RoomID      *string `gorm:"type:uuid;index" json:"room_id"`
	ImageURL    string  `gorm:"not null" json:"image_url"`
	Position    int     `gorm:"not null;default:0;index:idx_library_owner_position,priority:2" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LibraryItem) TableName() string { return "library_items" }

// Room groups link and library tiles of one owner.
type Room struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerSerial int64  `gorm:"not null;uniqueIndex:idx_rooms_owner_name,priority:1" json:"owner_serial"`
	Name        string `gorm:"not null;uniqueIndex:idx_rooms_owner_name,priority:2" json:"name"`
	Position    int    `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *ContentTile) BeforeCreate(tx *gorm.DB) error { return setID(&c.ID) }
func (l *LinkTile) BeforeCreate(tx *gorm.DB) error    { return setID(&l.ID) }
func (i *LibraryItem) BeforeCreate(tx *gorm.DB) error { return setID(&i.ID) }
func (r *Room) BeforeCreate(tx *gorm.DB) error        { return setID(&r.ID) }

func setID(id *string) error {
	if *id == "" {
		*id = uuid.NewString()
	}
	return nil
}

func (c ContentTile) TileKind() Kind    { return KindContent }
func (c ContentTile) TileID() string    { return c.ID }
func (c ContentTile) TilePosition() int { return c.Position }

func (l LinkTile) TileKind() Kind    { return KindLinks }
func (l LinkTile) TileID() string    { return l.ID }
func (l LinkTile) TilePosition() int { return l.Position }

func (i LibraryItem) TileKind() Kind    { return KindLibrary }
func (i LibraryItem) TileID() string    { return i.ID }
func (i LibraryItem) TilePosition() int { return i.Position }
