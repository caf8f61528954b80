package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyiovibe/studyio-backend/internal/config"
	"github.com/studyiovibe/studyio-backend/internal/mailer"
	"github.com/studyiovibe/studyio-backend/internal/models"
	"gorm.io/gorm"
)

// OTPService issues and verifies the short-lived email verification codes
// used during registration.
type OTPService struct {
	db      *gorm.DB
	cfg     *config.Config
	hasher  *Hasher
	limiter *RateLimiter
	mail    mailer.Mailer
}

func NewOTPService(db *gorm.DB, cfg *config.Config, hasher *Hasher, limiter *RateLimiter, mail mailer.Mailer) *OTPService {
	return &OTPService{db: db, cfg: cfg, hasher: hasher, limiter: limiter, mail: mail}
}

// SendRegistrationOTP issues a fresh 6-digit code for the user behind email
// and delivers it out of band. Previously issued codes stay valid until they
// expire or get consumed.
func (s *OTPService) SendRegistrationOTP(ctx context.Context, email string) error {
	res, err := s.limiter.Check(ctx, "otp:"+email, s.cfg.OTPRequestWindow, s.cfg.OTPRequestLimit)
	if err != nil {
		return err
	}
	if res.Limited {
		return &RateLimitedError{RetryAfter: res.RetryAfter}
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := generateNumericCode(otpLength)
	if err != nil {
		return err
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}

	record := models.OneTimeCode{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().Add(s.cfg.OTPExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	return s.mail.SendVerificationOTP(ctx, user.Email, user.Name, code)
}

// VerifyRegistrationOTP compares candidate against every outstanding code for
// the user, not just the newest. A match on a live code consumes it and marks
// the account verified; a match on an expired code reports ErrOTPExpired so
// the client can prompt a resend.
func (s *OTPService) VerifyRegistrationOTP(ctx context.Context, email, candidate string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	var codes []models.OneTimeCode
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&codes).Error; err != nil {
		return fmt.Errorf("failed to load OTPs: %w", err)
	}

	now := time.Now()
	anyLive := false
	for _, code := range codes {
		live := code.ExpiresAt.After(now)
		if live {
			anyLive = true
		}
		if !s.hasher.Verify(candidate, code.CodeHash) {
			continue
		}
		if !live {
			return ErrOTPExpired
		}
		return s.consume(ctx, &user, code.ID)
	}

	// With no live codes on file the precise failure is staleness, which the
	// requester already knows their own email for, so no oracle is opened.
	if !anyLive {
		return ErrOTPExpired
	}
	return ErrOTPInvalid
}

func (s *OTPService) consume(ctx context.Context, user *models.User, codeID uuid.UUID) error {
	// Delete-by-ID doubles as the double-spend guard: the second of two racing
	// verifications finds zero rows and fails.
	res := s.db.WithContext(ctx).Where("id = ?", codeID).Delete(&models.OneTimeCode{})
	if res.Error != nil {
		return fmt.Errorf("failed to consume OTP: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOTPInvalid
	}

	if err := s.db.WithContext(ctx).Model(user).Update("verified", true).Error; err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}
