package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/studyiovibe/studyio-backend/internal/config"
	"github.com/studyiovibe/studyio-backend/internal/dto"
	"github.com/studyiovibe/studyio-backend/internal/models"
	"github.com/studyiovibe/studyio-backend/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and serializes
	// concurrent access the way a real server's pool would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LinkedAccount{},
		&models.Session{},
		&models.OneTimeCode{},
		&models.PasswordResetToken{},
		&models.RateLimitCounter{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		SessionExpiry:    720 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		OTPExpiry:        3 * time.Minute,
		ResetLinkExpiry:  15 * time.Minute,
		ResetOTPExpiry:   10 * time.Minute,
		OTPRequestWindow: 30 * time.Second,
		OTPRequestLimit:  1,
		AppBaseURL:       "http://localhost:3000",
	}
}

// fakeMailer records outgoing messages instead of delivering them.
type fakeMailer struct {
	mu        sync.Mutex
	lastCode  string
	lastLink  string
	sentCount int
}

func (m *fakeMailer) SendVerificationOTP(_ context.Context, _, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCode = code
	m.sentCount++
	return nil
}

func (m *fakeMailer) SendPasswordResetLink(_ context.Context, _, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLink = link
	m.sentCount++
	return nil
}

func (m *fakeMailer) SendPasswordResetOTP(_ context.Context, _, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCode = code
	m.sentCount++
	return nil
}

func (m *fakeMailer) code() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCode
}

func (m *fakeMailer) link() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLink
}

type fixture struct {
	db      *gorm.DB
	cfg     *config.Config
	hasher  *services.Hasher
	limiter *services.RateLimiter
	mail    *fakeMailer
	auth    *services.AuthService
	otp     *services.OTPService
	reset   *services.PasswordResetService
	cleanup *services.CleanupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	hasher := services.NewHasher(cfg.BcryptCost)
	limiter := services.NewRateLimiter(db)
	mail := &fakeMailer{}
	return &fixture{
		db:      db,
		cfg:     cfg,
		hasher:  hasher,
		limiter: limiter,
		mail:    mail,
		auth:    services.NewAuthService(db, cfg, hasher),
		otp:     services.NewOTPService(db, cfg, hasher, limiter, mail),
		reset:   services.NewPasswordResetService(db, cfg, hasher, limiter, mail),
		cleanup: services.NewCleanupService(db),
	}
}

func (f *fixture) register(t *testing.T, email, password, name string) models.User {
	t.Helper()
	_, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Email: email, Password: password, Name: name,
	})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, f.db.Where("email = ?", email).First(&user).Error)
	return user
}

// backdate marks every row of model owned by user as expired.
func backdate(t *testing.T, db *gorm.DB, model interface{}, userID interface{}) {
	t.Helper()
	err := db.Model(model).Where("user_id = ?", userID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	require.NoError(t, err)
}
