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

// PasswordResetService owns the reset-by-link and reset-by-OTP flows. Both
// store only a bcrypt hash of the secret and consume it with a conditional
// used=false -> true update so a token can never be spent twice.
type PasswordResetService struct {
	db      *gorm.DB
	cfg     *config.Config
	hasher  *Hasher
	limiter *RateLimiter
	mail    mailer.Mailer
}

func NewPasswordResetService(db *gorm.DB, cfg *config.Config, hasher *Hasher, limiter *RateLimiter, mail mailer.Mailer) *PasswordResetService {
	return &PasswordResetService{db: db, cfg: cfg, hasher: hasher, limiter: limiter, mail: mail}
}

// RequestResetLink emails a reset link carrying a 32-byte token. The distinct
// not-found error intentionally mirrors the product's existing behavior of
// telling the requester no account exists.
func (s *PasswordResetService) RequestResetLink(ctx context.Context, email string) error {
	res, err := s.limiter.Check(ctx, "reset:"+email, s.cfg.OTPRequestWindow, s.cfg.OTPRequestLimit)
	if err != nil {
		return err
	}
	if res.Limited {
		return &RateLimitedError{RetryAfter: res.RetryAfter}
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	if err := s.store(ctx, user.ID, token, s.cfg.ResetLinkExpiry); err != nil {
		return err
	}

	link := s.cfg.AppBaseURL + "/auth/reset-password?token=" + token
	return s.mail.SendPasswordResetLink(ctx, user.Email, user.Name, link)
}

// RequestChangeOTP emails a 6-digit code for the in-app password change flow.
func (s *PasswordResetService) RequestChangeOTP(ctx context.Context, email string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	code, err := generateNumericCode(otpLength)
	if err != nil {
		return err
	}
	if err := s.store(ctx, user.ID, code, s.cfg.ResetOTPExpiry); err != nil {
		return err
	}

	return s.mail.SendPasswordResetOTP(ctx, user.Email, user.Name, code)
}

// ResetWithToken consumes a link token and sets the new password. Mismatch and
// expiry deliberately collapse into one failure so the endpoint is not an
// account-enumeration oracle.
func (s *PasswordResetService) ResetWithToken(ctx context.Context, token, newPassword string) error {
	var candidates []models.PasswordResetToken
	if err := s.db.WithContext(ctx).
		Where("used = ? AND expires_at > ?", false, time.Now()).
		Order("created_at DESC").
		Find(&candidates).Error; err != nil {
		return fmt.Errorf("failed to load reset tokens: %w", err)
	}

	for i := range candidates {
		if s.hasher.Verify(token, candidates[i].TokenHash) {
			return s.consumeAndSetPassword(ctx, &candidates[i], newPassword)
		}
	}
	return ErrResetTokenInvalid
}

// ResetWithOTP consumes a change OTP scoped to the user behind email.
func (s *PasswordResetService) ResetWithOTP(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	var candidates []models.PasswordResetToken
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND used = ? AND expires_at > ?", user.ID, false, time.Now()).
		Order("created_at DESC").
		Find(&candidates).Error; err != nil {
		return fmt.Errorf("failed to load reset tokens: %w", err)
	}

	for i := range candidates {
		if s.hasher.Verify(otp, candidates[i].TokenHash) {
			return s.consumeAndSetPassword(ctx, &candidates[i], newPassword)
		}
	}
	return ErrResetTokenInvalid
}

func (s *PasswordResetService) findUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *PasswordResetService) store(ctx context.Context, userID uuid.UUID, secret string, ttl time.Duration) error {
	secretHash, err := s.hasher.Hash(secret)
	if err != nil {
		return err
	}
	record := models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: secretHash,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (s *PasswordResetService) consumeAndSetPassword(ctx context.Context, token *models.PasswordResetToken, newPassword string) error {
	// Conditional update: zero rows affected means a concurrent request
	// already spent this token.
	res := s.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND used = ?", token.ID, false).
		Update("used", true)
	if res.Error != nil {
		return fmt.Errorf("failed to consume reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResetTokenInvalid
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", token.UserID).
		Update("password_hash", passwordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
