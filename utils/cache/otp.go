package cache

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"
)

// OTP purposes. Codes for different purposes live under different keys so a
// signup code can never confirm a password reset.
const (
	OTPPurposeSignup        = "signup"
	OTPPurposePasswordReset = "password_reset"
)

const (
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 5
)

var (
	ErrOTPNotFound    = errors.New("otp not found or expired")
	ErrOTPMismatch    = errors.New("otp does not match")
	ErrOTPMaxAttempts = errors.New("too many otp attempts")
)

// OTPStore keeps one-time codes in Redis with a TTL and a per-code attempt
// counter
type OTPStore struct {
	cache *RedisCache
}

// NewOTPStore creates a new OTP store
func NewOTPStore(cache *RedisCache) *OTPStore {
	return &OTPStore{cache: cache}
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

func otpAttemptsKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s:attempts", purpose, email)
}

// Save stores a code for the given purpose and email, replacing any previous
// code and resetting the attempt counter
func (s *OTPStore) Save(ctx context.Context, purpose, email, code string) error {
	if err := s.cache.Set(ctx, otpKey(purpose, email), code, otpTTL); err != nil {
		return err
	}
	return s.cache.Delete(ctx, otpAttemptsKey(purpose, email))
}

// Verify checks a submitted code. A matching code is consumed; a mismatch
// increments the attempt counter and locks the code out after otpMaxAttempts.
func (s *OTPStore) Verify(ctx context.Context, purpose, email, code string) error {
	stored, err := s.cache.Get(ctx, otpKey(purpose, email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrOTPNotFound
		}
		return err
	}

	attempts, err := s.cache.Increment(ctx, otpAttemptsKey(purpose, email))
	if err == nil && attempts == 1 {
		s.cache.Expire(ctx, otpAttemptsKey(purpose, email), otpTTL)
	}
	if attempts > otpMaxAttempts {
		return ErrOTPMaxAttempts
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrOTPMismatch
	}

	// Consume the code
	return s.cache.Delete(ctx, otpKey(purpose, email), otpAttemptsKey(purpose, email))
}
