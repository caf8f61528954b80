package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/studyiovibe/studyio-backend/internal/config"
	"github.com/studyiovibe/studyio-backend/internal/dto"
	"github.com/studyiovibe/studyio-backend/internal/models"
	"gorm.io/gorm"
)

// AuthService resolves identities (credentials or Google) and owns the
// session lifecycle.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	hasher *Hasher
	google *GoogleIDTokenVerifier
}

func NewAuthService(db *gorm.DB, cfg *config.Config, hasher *Hasher) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		hasher: hasher,
		google: NewGoogleIDTokenVerifier(),
	}
}

// Register creates an unverified credentials account and echoes the email.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (string, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: &passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return user.Email, nil
}

// Login authenticates email+password and issues a session. OAuth-only
// accounts get a distinct error pointing at their original provider.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrOAuthOnlyAccount
	}
	if !s.hasher.Verify(req.Password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, &user)
}

// GoogleProfile is the provider-asserted identity handed to the resolver.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleSignIn verifies the ID token and resolves the profile into a session.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	claims, err := s.google.Verify(idToken, s.cfg.GoogleClientID)
	if err != nil {
		return nil, err
	}
	return s.ResolveGoogleProfile(ctx, GoogleProfile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	})
}

// ResolveGoogleProfile enforces the linkage invariant in one place: an email
// that already owns a password account, or a link to another provider, is
// rejected rather than silently merged. First sign-in creates the user as
// verified, since the provider asserts the email.
func (s *AuthService) ResolveGoogleProfile(ctx context.Context, profile GoogleProfile) (*dto.AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("LinkedAccounts").
		Where("email = ?", profile.Email).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createGoogleUser(ctx, profile)
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.HasPassword() {
		return nil, ErrAccountLinked
	}
	for _, link := range user.LinkedAccounts {
		if link.Provider == models.ProviderGoogle {
			return s.issueSession(ctx, &user)
		}
	}
	if len(user.LinkedAccounts) > 0 {
		return nil, ErrAccountLinked
	}

	// Passwordless user without any link should not exist; record the link
	// rather than failing the sign-in.
	link := models.LinkedAccount{
		ID:             uuid.New(),
		UserID:         user.ID,
		Provider:       models.ProviderGoogle,
		ProviderUserID: profile.Subject,
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to link provider: %w", err)
	}
	return s.issueSession(ctx, &user)
}

func (s *AuthService) createGoogleUser(ctx context.Context, profile GoogleProfile) (*dto.AuthResponse, error) {
	name := profile.Name
	if name == "" {
		name = strings.Split(profile.Email, "@")[0]
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    profile.Email,
		Name:     name,
		Verified: true,
	}
	if profile.Picture != "" {
		user.AvatarURL = &profile.Picture
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.LinkedAccount{
			ID:             uuid.New(),
			UserID:         user.ID,
			Provider:       models.ProviderGoogle,
			ProviderUserID: profile.Subject,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google user: %w", err)
	}

	return s.issueSession(ctx, &user)
}

// ValidateSession is the read path: it resolves an opaque session token to
// the owning user ID, treating absent or expired rows as unauthenticated.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (uuid.UUID, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(token)).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidSession
		}
		return uuid.Nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return uuid.Nil, ErrInvalidSession
	}
	return session.UserID, nil
}

// RefreshSession rotates a valid session: the old row is deleted and a new
// 30-day grant is issued. Expiry is never extended in place.
func (s *AuthService) RefreshSession(ctx context.Context, token string) (*dto.AuthResponse, error) {
	userID, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(token)).
		Delete(&models.Session{}).Error; err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("session user not found: %w", err)
	}
	return s.issueSession(ctx, &user)
}

// Logout revokes the session row for the given token, if any.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(token)).
		Delete(&models.Session{}).Error
}

// DeleteAccount verifies the password for credential accounts and removes
// the user with everything owned by it.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user.HasPassword() {
		if password == "" {
			return ErrInvalidCredentials
		}
		if !s.hasher.Verify(password, *user.PasswordHash) {
			return ErrInvalidCredentials
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ?", userID).Delete(&models.Session{})
		tx.Where("user_id = ?", userID).Delete(&models.OneTimeCode{})
		tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{})
		tx.Where("user_id = ?", userID).Delete(&models.LinkedAccount{})
		return tx.Delete(&user).Error
	})
}

// UpdateProfile applies name/email/avatar changes for the principal.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.ProfileUpdateRequest) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		var other models.User
		if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&other).Error; err == nil {
			return nil, ErrEmailTaken
		}
		updates["email"] = req.Email
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
	}

	resp := safeUser(&user)
	return &resp, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	sessionToken, err := s.generateSessionToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		SessionToken: sessionToken,
		User:         safeUser(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"email":    user.Email,
		"verified": user.Verified,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateSessionToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.SessionExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return rawToken, nil
}

// safeUser is the projection returned to clients, never the password hash.
func safeUser(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Verified:  user.Verified,
	}
}
