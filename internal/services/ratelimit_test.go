package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyiovibe/studyio-backend/internal/services"
)

func TestRateLimiter_SecondRequestInWindowIsLimited(t *testing.T) {
	db := newTestDB(t)
	limiter := services.NewRateLimiter(db)
	ctx := context.Background()

	first, err := limiter.Check(ctx, "otp:alice@example.com", 30*time.Second, 1)
	require.NoError(t, err)
	assert.False(t, first.Limited)

	second, err := limiter.Check(ctx, "otp:alice@example.com", 30*time.Second, 1)
	require.NoError(t, err)
	assert.True(t, second.Limited)
	assert.Greater(t, second.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, second.RetryAfter, 30*time.Second)
}

func TestRateLimiter_IdentifiersAreIndependent(t *testing.T) {
	db := newTestDB(t)
	limiter := services.NewRateLimiter(db)
	ctx := context.Background()

	_, err := limiter.Check(ctx, "otp:alice@example.com", 30*time.Second, 1)
	require.NoError(t, err)

	res, err := limiter.Check(ctx, "reset:alice@example.com", 30*time.Second, 1)
	require.NoError(t, err)
	assert.False(t, res.Limited)

	res, err = limiter.Check(ctx, "otp:bob@example.com", 30*time.Second, 1)
	require.NoError(t, err)
	assert.False(t, res.Limited)
}

func TestRateLimiter_ConcurrentChecksCountEveryIncrement(t *testing.T) {
	db := newTestDB(t)
	limiter := services.NewRateLimiter(db)

	const workers = 10
	var wg sync.WaitGroup
	limited := make([]bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := limiter.Check(context.Background(), "otp:carol@example.com", time.Minute, 1)
			assert.NoError(t, err)
			limited[i] = res.Limited
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, l := range limited {
		if !l {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed, "atomic increment must admit exactly one caller")
}

func TestRateLimiter_NewWindowResetsCount(t *testing.T) {
	db := newTestDB(t)
	limiter := services.NewRateLimiter(db)
	ctx := context.Background()

	// A very short window so the next check lands in a fresh bucket.
	_, err := limiter.Check(ctx, "otp:dave@example.com", 10*time.Millisecond, 1)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	res, err := limiter.Check(ctx, "otp:dave@example.com", 10*time.Millisecond, 1)
	require.NoError(t, err)
	assert.False(t, res.Limited, "a later window must start from a fresh count")
}
