package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyiovibe/studyio-backend/internal/dto"
	"github.com/studyiovibe/studyio-backend/internal/models"
	"github.com/studyiovibe/studyio-backend/internal/services"
)

func TestAuth_RegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	email, err := f.auth.Register(ctx, &dto.RegisterRequest{
		Email: "alice@example.com", Password: "Secret123!", Name: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{
		Email: "alice@example.com", Password: "Secret123!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.False(t, resp.User.Verified)
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com", "Secret123!", "Alice")

	_, err := f.auth.Register(ctx, &dto.RegisterRequest{
		Email: "alice@example.com", Password: "Other123!", Name: "Imposter",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestAuth_LoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com", "Secret123!", "Alice")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuth_LoginRejectedForOAuthOnlyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.ResolveGoogleProfile(ctx, services.GoogleProfile{
		Subject: "google-sub-1", Email: "carol@example.com", Name: "Carol",
	})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "anything"})
	assert.ErrorIs(t, err, services.ErrOAuthOnlyAccount)
}

func TestAuth_GoogleFirstSignInCreatesVerifiedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.ResolveGoogleProfile(ctx, services.GoogleProfile{
		Subject: "google-sub-1",
		Email:   "carol@example.com",
		Name:    "Carol",
		Picture: "https://example.com/carol.png",
	})
	require.NoError(t, err)
	assert.True(t, resp.User.Verified)

	var user models.User
	require.NoError(t, f.db.Preload("LinkedAccounts").Where("email = ?", "carol@example.com").First(&user).Error)
	assert.False(t, user.HasPassword())
	require.Len(t, user.LinkedAccounts, 1)
	assert.Equal(t, models.ProviderGoogle, user.LinkedAccounts[0].Provider)
	assert.Equal(t, "google-sub-1", user.LinkedAccounts[0].ProviderUserID)
}

func TestAuth_GoogleSignInNeverMergesPasswordAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com", "Secret123!", "Alice")

	_, err := f.auth.ResolveGoogleProfile(ctx, services.GoogleProfile{
		Subject: "google-sub-2", Email: "alice@example.com", Name: "Alice",
	})
	assert.ErrorIs(t, err, services.ErrAccountLinked)

	// The credentials account is untouched.
	var user models.User
	require.NoError(t, f.db.Preload("LinkedAccounts").Where("email = ?", "alice@example.com").First(&user).Error)
	assert.True(t, user.HasPassword())
	assert.Empty(t, user.LinkedAccounts)
}

func TestAuth_GoogleRepeatSignInReusesAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := services.GoogleProfile{Subject: "google-sub-1", Email: "carol@example.com", Name: "Carol"}

	_, err := f.auth.ResolveGoogleProfile(ctx, profile)
	require.NoError(t, err)
	_, err = f.auth.ResolveGoogleProfile(ctx, profile)
	require.NoError(t, err)

	var count int64
	f.db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAuth_SessionValidateAndRotate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Secret123!", "Alice")

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	userID, err := f.auth.ValidateSession(ctx, resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	refreshed, err := f.auth.RefreshSession(ctx, resp.SessionToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.SessionToken, refreshed.SessionToken)

	// The rotated-out token is dead.
	_, err = f.auth.ValidateSession(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
	_, err = f.auth.ValidateSession(ctx, refreshed.SessionToken)
	assert.NoError(t, err)
}

func TestAuth_ExpiredSessionIsUnauthenticated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Secret123!", "Alice")

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	backdate(t, f.db, &models.Session{}, user.ID)

	_, err = f.auth.ValidateSession(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
	_, err = f.auth.RefreshSession(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
}

func TestAuth_LogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com", "Secret123!", "Alice")

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, resp.SessionToken))

	_, err = f.auth.ValidateSession(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
}

func TestAuth_DeleteAccountRemovesOwnedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Secret123!", "Alice")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	require.NoError(t, f.otp.SendRegistrationOTP(ctx, "alice@example.com"))

	err = f.auth.DeleteAccount(ctx, user.ID, "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	require.NoError(t, f.auth.DeleteAccount(ctx, user.ID, "Secret123!"))

	var sessions, codes int64
	f.db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&sessions)
	f.db.Model(&models.OneTimeCode{}).Where("user_id = ?", user.ID).Count(&codes)
	assert.Zero(t, sessions)
	assert.Zero(t, codes)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestAuth_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Secret123!", "Alice")
	f.register(t, "bob@example.com", "BobSecret1!", "Bob")

	avatar := "https://example.com/a.png"
	updated, err := f.auth.UpdateProfile(ctx, user.ID, &dto.ProfileUpdateRequest{
		Name: "Alice W", AvatarURL: &avatar,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice W", updated.Name)

	_, err = f.auth.UpdateProfile(ctx, user.ID, &dto.ProfileUpdateRequest{Email: "bob@example.com"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestAuth_SessionExpirySetAtIssuance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Secret123!", "Alice")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	var session models.Session
	require.NoError(t, f.db.Where("user_id = ?", user.ID).First(&session).Error)
	assert.WithinDuration(t, time.Now().Add(f.cfg.SessionExpiry), session.ExpiresAt, time.Minute)
}
