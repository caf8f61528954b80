package services

import (
	"context"
	"fmt"
	"time"

	"github.com/studyiovibe/studyio-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateLimiter implements fixed-window counting on top of the shared database,
// so limits hold across server instances. The increment is a single upsert
// (ON CONFLICT ... count = count + 1 RETURNING), never read-then-write.
type RateLimiter struct {
	db *gorm.DB
}

func NewRateLimiter(db *gorm.DB) *RateLimiter {
	return &RateLimiter{db: db}
}

type RateLimitResult struct {
	Limited    bool
	RetryAfter time.Duration
}

// Check increments the counter for identifier in the current window and
// reports whether the post-increment count exceeds limit. Window boundaries
// are fixed on the server clock.
func (r *RateLimiter) Check(ctx context.Context, identifier string, window time.Duration, limit int64) (RateLimitResult, error) {
	now := time.Now().UTC()
	windowStart := now.Truncate(window)

	// Nanosecond bucket stamps keep sub-second windows distinct.
	counter := models.RateLimitCounter{
		Key:         fmt.Sprintf("%s:%d", identifier, windowStart.UnixNano()),
		Count:       1,
		WindowStart: windowStart,
		ExpiresAt:   windowStart.Add(window),
	}

	err := r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("rate_limit_counters.count + 1")}),
		},
		clause.Returning{},
	).Create(&counter).Error
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	if counter.Count > limit {
		retryAfter := counter.ExpiresAt.Sub(now).Round(time.Second)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return RateLimitResult{Limited: true, RetryAfter: retryAfter}, nil
	}
	return RateLimitResult{}, nil
}
