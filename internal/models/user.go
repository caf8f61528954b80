package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the root identity record. PasswordHash is nil for accounts that
// only ever signed in through an OAuth provider.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string         `gorm:"size:120" json:"name"`
	PasswordHash *string        `gorm:"size:100" json:"-"`
	AvatarURL    *string        `gorm:"size:512" json:"avatar_url,omitempty"`
	Verified     bool           `gorm:"default:false" json:"verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	LinkedAccounts []LinkedAccount `gorm:"foreignKey:UserID" json:"-"`
}

// HasPassword reports whether the account can authenticate with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
