package models

import (
	"time"

	"github.com/google/uuid"
)

// OneTimeCode is a short-lived email verification code, stored bcrypt-hashed.
// Several codes may be outstanding for the same user at once; each is deleted
// on first successful use.
type OneTimeCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CodeHash  string    `gorm:"size:100;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
