package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/throttle"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

// SecondFactorService sends and checks sign-in passcodes derived from each
// account's OTP key. Wrong codes count towards the same lockout cap as wrong
// passwords.
type SecondFactorService struct {
	Users    *UserService
	OTP      Passcodes
	Notifier Notifier
	Limiter  throttle.Limiter
}

func (s *SecondFactorService) SendPasscode(ctx context.Context, username string) error {
	log := slogx.FromContext(ctx)

	if err := allow(ctx, s.Limiter, "second_factor_sms", username); err != nil {
		log.Warn("second factor sms throttled", slog.String("username", username))
		return err
	}

	u, err := s.Users.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return s.Users.lookupError(ctx, username, err)
	}
	if u.Disabled {
		return newError(ErrLocked, "user account is disabled")
	}
	if u.TelephoneNumber == "" {
		return newError(ErrUnprocessable, "user [%s] has no telephone number", username)
	}

	passcode, err := s.OTP.Current(u.OTPKey)
	if err != nil {
		return internal("failed to generate passcode", err)
	}

	s.Notifier.SendPasscode(ctx, u.TelephoneNumber, passcode, notify.PurposeSignIn)
	log.Info("second factor passcode dispatched", slog.String("username", username))
	return nil
}

func (s *SecondFactorService) Authenticate(ctx context.Context, username, code string) (domain.User, error) {
	u, err := s.Users.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, s.Users.lookupError(ctx, username, err)
	}
	if u.Disabled {
		return domain.User{}, newError(ErrLocked, "user account is disabled")
	}

	if !s.OTP.Verify(u.OTPKey, code) {
		if _, err := s.Users.RecordLoginAttempt(ctx, username); err != nil {
			return domain.User{}, err
		}
		slogx.FromContext(ctx).Info("invalid second factor code", slog.String("username", username))
		return domain.User{}, newError(ErrUnauthorized, "invalid second factor code")
	}

	return s.Users.recordSuccess(ctx, username)
}
