package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderStripe = "stripe"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity. Serial is assigned once at registration and never changes.
type User struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Serial       int64   `gorm:"not null;uniqueIndex:idx_users_serial" json:"serial"`
	Password     *string `gorm:"" json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// SerialCounter is the single-row counter behind serial allocation.
// Claims are one UPDATE ... RETURNING statement, never read-then-write.
type SerialCounter struct {
	Name  string `gorm:"primaryKey;type:varchar(32)"`
	Value int64  `gorm:"not null"`
}

const UserSerialCounter = "users"
