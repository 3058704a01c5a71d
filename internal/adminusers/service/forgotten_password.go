package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/throttle"
	"github.com/aussiebroadwan/adminusers/pkg/cryptox"
	"github.com/aussiebroadwan/adminusers/pkg/idx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

type ForgottenPasswordService struct {
	Store    store.Store
	Hasher   Hasher
	Notifier Notifier
	Limiter  throttle.Limiter
	Links    LinksBuilder
	TTL      time.Duration
	Now      func() time.Time
}

// Create issues a reset token for username. An unknown username is NotFound
// with the same message shape as any other miss.
func (s *ForgottenPasswordService) Create(ctx context.Context, username string) (domain.ForgottenPassword, error) {
	log := slogx.FromContext(ctx)

	if err := allow(ctx, s.Limiter, "forgotten_password", username); err != nil {
		log.Warn("forgotten password request throttled", slog.String("username", username))
		return domain.ForgottenPassword{}, err
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ForgottenPassword{}, newError(ErrNotFound, "user [%s] not found", username)
		}
		return domain.ForgottenPassword{}, internal("failed to load user", err)
	}

	code, err := cryptox.GenerateCode(cryptox.TokenSize128)
	if err != nil {
		return domain.ForgottenPassword{}, internal("failed to generate code", err)
	}

	now := clock(s.Now)
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultForgottenPasswordTTL
	}
	fp := domain.ForgottenPassword{
		ID:        idx.NewAt(now).String(),
		Code:      code,
		CodeHash:  cryptox.FingerprintToken(code),
		UserID:    u.ID,
		Username:  u.Username,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.ForgottenPasswords().CreateForgottenPassword(ctx, fp); err != nil {
		log.Error("failed to create forgotten password", slog.Any("error", err))
		return domain.ForgottenPassword{}, internal("failed to create forgotten password", err)
	}

	s.Notifier.SendForgottenPasswordEmail(ctx, u.Email, s.Links.ResetPasswordURL(code))

	log.Info("forgotten password created",
		slog.String("forgotten_password_id", fp.ID),
		slog.String("username", u.Username),
		slog.Time("expires_at", fp.ExpiresAt),
	)
	fp.Links = []domain.Link{s.Links.ForgottenPasswordSelf(code)}
	return fp, nil
}

// FindNonExpired returns the token for code. Expired tokens are not found.
func (s *ForgottenPasswordService) FindNonExpired(ctx context.Context, code string) (domain.ForgottenPassword, error) {
	fp, err := s.Store.ForgottenPasswords().GetForgottenPasswordByCodeHash(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ForgottenPassword{}, newError(ErrNotFound, "forgotten password code not found")
		}
		return domain.ForgottenPassword{}, internal("failed to load forgotten password", err)
	}
	if fp.Expired(clock(s.Now)) {
		return domain.ForgottenPassword{}, newError(ErrNotFound, "forgotten password code not found")
	}

	fp.Code = code
	fp.Links = []domain.Link{s.Links.ForgottenPasswordSelf(code)}
	return fp, nil
}

// ResetPassword sets a new password using a valid code. The code is consumed
// and the session version bumped so existing sessions end.
func (s *ForgottenPasswordService) ResetPassword(ctx context.Context, code, password string) error {
	log := slogx.FromContext(ctx)

	fp, err := s.FindNonExpired(ctx, code)
	if err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return internal("failed to hash password", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, fp.UserID)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		u.SessionVersion++
		if _, err := tx.Users().UpdateUser(ctx, u, u.Version); err != nil {
			return err
		}
		return tx.ForgottenPasswords().DeleteForgottenPassword(ctx, fp.ID)
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return newError(ErrNotFound, "forgotten password code not found")
	case errors.Is(err, store.ErrVersionConflict):
		return newError(ErrConflict, "user was modified concurrently, try again")
	default:
		log.Error("failed to reset password", slog.Any("error", err))
		return internal("failed to reset password", err)
	}

	log.Info("password reset", slog.String("username", fp.Username))
	return nil
}
