package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/throttle"
)

// Hasher is satisfied by cryptox.Hasher.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// Passcodes is satisfied by *otpx.Engine.
type Passcodes interface {
	NewSeed() (string, error)
	Current(seed string) (string, error)
	Verify(seed, code string) bool
}

// Notifier is satisfied by *notify.Dispatcher. Sends are best-effort and the
// returned channel may be ignored.
type Notifier interface {
	SendServiceInviteEmail(ctx context.Context, email, inviteURL string) <-chan notify.Result
	SendUserInviteEmail(ctx context.Context, sender, email, inviteURL string) <-chan notify.Result
	SendForgottenPasswordEmail(ctx context.Context, email, resetURL string) <-chan notify.Result
	SendPasscode(ctx context.Context, telephone, passcode string, purpose notify.Purpose) <-chan notify.Result
}

const (
	DefaultLoginAttemptCap      = 10
	DefaultForgottenPasswordTTL = 3 * time.Hour
	DefaultInviteTTL            = 48 * time.Hour
	DefaultInviteRole           = "admin"
)

func allow(ctx context.Context, l throttle.Limiter, action, key string) error {
	if l == nil {
		return nil
	}
	if err := l.Allow(ctx, action, key); err != nil {
		return newError(ErrTooManyRequests, "too many requests, try again later")
	}
	return nil
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

func capOrDefault(n int) int {
	if n <= 0 {
		return DefaultLoginAttemptCap
	}
	return n
}
