package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOAuthOnlyAccount   = errors.New("this account is linked with Google, please login via Google to proceed")
	ErrAccountLinked      = errors.New("an account with this email already uses a different sign-in method")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrOTPInvalid         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrResetTokenInvalid  = errors.New("invalid or expired token")
)

// RateLimitedError reports how long the caller should wait before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}
