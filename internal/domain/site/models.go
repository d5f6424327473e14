package site

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Footprint is a user's published single page. UserID never changes after creation
// and at most one footprint per user is primary.
type Footprint struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_footprints_one_primary,where:is_primary = true" json:"user_id"`
	Slug   string `gorm:"not null;uniqueIndex:idx_footprints_slug" json:"slug"`

	Name        string `json:"name"`
	Icon        string `json:"icon"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	ThemeID     string `json:"theme_id"`

	IsPublic  bool  `gorm:"not null;default:true" json:"is_public"`
	IsPrimary bool  `gorm:"not null;default:false" json:"is_primary"`
	Views     int64 `gorm:"not null;default:0" json:"views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Footprint) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
