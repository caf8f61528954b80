package services

import (
	"context"
	"fmt"
	"time"

	"github.com/studyiovibe/studyio-backend/internal/models"
	"gorm.io/gorm"
)

// CleanupService sweeps expired rows. Validation always re-checks expiry at
// use time, so the sweep cadence only affects storage, not correctness.
type CleanupService struct {
	db *gorm.DB
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{db: db}
}

type SweepResult struct {
	Codes        int64
	ResetTokens  int64
	Sessions     int64
	RateCounters int64
}

// Sweep deletes expired OTPs, used or expired reset tokens, expired sessions
// and stale rate-limit buckets. Idempotent; safe to run on any cadence.
func (s *CleanupService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now()
	result := &SweepResult{}

	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.OneTimeCode{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to sweep OTPs: %w", res.Error)
	}
	result.Codes = res.RowsAffected

	res = s.db.WithContext(ctx).Where("expires_at < ? OR used = ?", now, true).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to sweep reset tokens: %w", res.Error)
	}
	result.ResetTokens = res.RowsAffected

	res = s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to sweep sessions: %w", res.Error)
	}
	result.Sessions = res.RowsAffected

	res = s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RateLimitCounter{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to sweep rate counters: %w", res.Error)
	}
	result.RateCounters = res.RowsAffected

	return result, nil
}
