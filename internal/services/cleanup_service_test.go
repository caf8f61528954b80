package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyiovibe/studyio-backend/internal/models"
)

func TestCleanup_SweepRemovesOnlyDeadRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expired := f.register(t, "old@example.com", "Secret123!", "Old")
	f.register(t, "fresh@example.com", "Secret123!", "Fresh")

	// Live rows for one user, expired rows for the other.
	require.NoError(t, f.otp.SendRegistrationOTP(ctx, "old@example.com"))
	require.NoError(t, f.reset.RequestResetLink(ctx, "old@example.com"))
	require.NoError(t, f.otp.SendRegistrationOTP(ctx, "fresh@example.com"))
	require.NoError(t, f.reset.RequestResetLink(ctx, "fresh@example.com"))

	backdate(t, f.db, &models.OneTimeCode{}, expired.ID)
	backdate(t, f.db, &models.PasswordResetToken{}, expired.ID)

	result, err := f.cleanup.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Codes)
	assert.EqualValues(t, 1, result.ResetTokens)

	var codes, tokens int64
	f.db.Model(&models.OneTimeCode{}).Count(&codes)
	f.db.Model(&models.PasswordResetToken{}).Count(&tokens)
	assert.EqualValues(t, 1, codes)
	assert.EqualValues(t, 1, tokens)
}

func TestCleanup_SweepRemovesUsedResetTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com", "Secret123!", "Alice")

	require.NoError(t, f.reset.RequestChangeOTP(ctx, "alice@example.com"))
	require.NoError(t, f.reset.ResetWithOTP(ctx, "alice@example.com", f.mail.code(), "NewSecret1!"))

	result, err := f.cleanup.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.ResetTokens)
}

func TestCleanup_SweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.cleanup.Sweep(ctx)
	require.NoError(t, err)
	second, err := f.cleanup.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, second.Codes)
	assert.Zero(t, second.Sessions)
}
