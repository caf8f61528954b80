package models

import "time"

// RateLimitCounter is one fixed-window bucket. Key is "<action>:<identifier>"
// suffixed with the window start, so stale buckets are simply swept by expiry.
type RateLimitCounter struct {
	Key         string    `gorm:"size:320;primaryKey" json:"key"`
	Count       int64     `gorm:"not null" json:"count"`
	WindowStart time.Time `gorm:"not null" json:"window_start"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
}
