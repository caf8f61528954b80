package models

import (
	"time"

	"github.com/google/uuid"
)

const ProviderGoogle = "google"

// LinkedAccount records an OAuth provider identity attached to a user.
// A user may hold several links, but an email that already owns a password
// account is never linked to a provider (and vice versa).
type LinkedAccount struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Provider       string    `gorm:"size:50;not null;uniqueIndex:idx_linked_provider_subject" json:"provider"`
	ProviderUserID string    `gorm:"size:255;not null;uniqueIndex:idx_linked_provider_subject" json:"-"`
	CreatedAt      time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
