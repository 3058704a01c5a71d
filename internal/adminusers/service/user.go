package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/pkg/idx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

// UserService owns the account authentication and lockout state machine.
type UserService struct {
	Store           store.Store
	Hasher          Hasher
	OTP             Passcodes
	Links           LinksBuilder
	LoginAttemptCap int
	Now             func() time.Time
}

// NewUser is the input to CreateUser. OTPKey is generated when empty and
// ServiceID may be empty for a role not yet bound to a service.
type NewUser struct {
	Username        string
	Email           string
	Password        string
	TelephoneNumber string
	OTPKey          string
	RoleName        string
	ServiceID       string
}

// GetUser returns the account with its self link.
func (s *UserService) GetUser(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, s.lookupError(ctx, username, err)
	}
	return s.withLinks(u), nil
}

// CreateUser persists a new account. Username and email uniqueness is
// enforced by the store rather than a pre-check.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	log := slogx.FromContext(ctx)

	role, err := s.Store.Roles().GetRoleByName(ctx, in.RoleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("attempted to create user with unknown role", slog.String("role", in.RoleName))
			return domain.User{}, newError(ErrUnprocessable, "role [%s] not recognised", in.RoleName)
		}
		return domain.User{}, internal("failed to fetch role", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, internal("failed to hash password", err)
	}

	otpKey := in.OTPKey
	if otpKey == "" {
		if otpKey, err = s.OTP.NewSeed(); err != nil {
			return domain.User{}, internal("failed to generate otp key", err)
		}
	}

	now := clock(s.Now)
	u := domain.User{
		ID:              idx.NewAt(now).String(),
		Username:        in.Username,
		Email:           strings.ToLower(in.Email),
		PasswordHash:    hash,
		OTPKey:          otpKey,
		TelephoneNumber: in.TelephoneNumber,
		ServiceRoles:    []domain.ServiceRole{{ServiceID: in.ServiceID, Role: role}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, s.createError(ctx, u, err)
	}

	log.Info("user created",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
		slog.String("role", role.Name),
	)
	return s.withLinks(u), nil
}

// CreateUserFromInvite creates the account for a redeemed invite. The
// username is the invited email and the password was hashed at OTP dispatch.
func (s *UserService) CreateUserFromInvite(ctx context.Context, a domain.InviteActivation) (domain.User, error) {
	return s.createFromInvite(ctx, s.Store.Users(), a)
}

func (s *UserService) createFromInvite(ctx context.Context, users store.Users, a domain.InviteActivation) (domain.User, error) {
	now := clock(s.Now)
	u := domain.User{
		ID:              idx.NewAt(now).String(),
		Username:        a.Email,
		Email:           strings.ToLower(a.Email),
		PasswordHash:    a.PasswordHash,
		OTPKey:          a.OTPKey,
		TelephoneNumber: a.TelephoneNumber,
		ServiceRoles:    []domain.ServiceRole{{ServiceID: a.ServiceID, Role: a.Role}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := users.CreateUser(ctx, u); err != nil {
		return domain.User{}, s.createError(ctx, u, err)
	}

	slogx.FromContext(ctx).Info("user created from invite",
		slog.String("user_id", u.ID),
		slog.String("invite_id", a.InviteID),
		slog.String("invite_type", string(a.Type)),
	)
	return s.withLinks(u), nil
}

// Authenticate checks username and password. A disabled account is Locked
// whatever the password; a wrong password counts towards the lockout cap.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, s.lookupError(ctx, username, err)
	}
	if u.Disabled {
		log.Warn("login attempt on locked account", slog.String("username", username))
		return domain.User{}, newError(ErrLocked, "user account is disabled")
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		u, err = s.RecordLoginAttempt(ctx, username)
		if err != nil {
			return domain.User{}, err
		}
		log.Info("failed login attempt",
			slog.String("username", username),
			slog.Int("login_counter", u.LoginCounter),
		)
		return domain.User{}, newError(ErrUnauthorized, "invalid username and/or password")
	}

	return s.recordSuccess(ctx, username)
}

// RecordLoginAttempt counts a failed attempt. When the account is (now)
// disabled the updated user is returned together with ErrLocked.
func (s *UserService) RecordLoginAttempt(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().RecordLoginFailure(ctx, username, capOrDefault(s.LoginAttemptCap))
	if err != nil {
		return domain.User{}, s.lookupError(ctx, username, err)
	}
	u = s.withLinks(u)
	if u.Disabled {
		slogx.FromContext(ctx).Warn("account locked after failed attempts",
			slog.String("username", username),
			slog.Int("login_counter", u.LoginCounter),
		)
		return u, newError(ErrLocked, "user account is disabled")
	}
	return u, nil
}

// ResetLoginAttempts zeroes the login counter and re-enables the account.
func (s *UserService) ResetLoginAttempts(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().ResetLoginAttempts(ctx, username)
	if err != nil {
		return domain.User{}, s.lookupError(ctx, username, err)
	}
	slogx.FromContext(ctx).Info("login attempts reset", slog.String("username", username))
	return s.withLinks(u), nil
}

// IncrementSessionVersion bumps the session version iff it still equals
// expected. A stale expectation is a Conflict and changes nothing.
func (s *UserService) IncrementSessionVersion(ctx context.Context, username string, expected int) (domain.User, error) {
	u, err := s.Store.Users().IncrementSessionVersion(ctx, username, expected)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return domain.User{}, newError(ErrConflict, "session version [%d] is not current", expected)
		}
		return domain.User{}, s.lookupError(ctx, username, err)
	}
	return s.withLinks(u), nil
}

// Patch is a single replace operation: "disabled" takes a bool and
// "telephone_number" a phone number string.
type Patch struct {
	Path  string
	Value any
}

// PatchUser applies a single replace operation. Enabling an account also
// zeroes its login counter, the same as ResetLoginAttempts. A write that
// races with a login attempt is retried against the fresh record.
func (s *UserService) PatchUser(ctx context.Context, username string, p Patch) (domain.User, error) {
	apply, err := patchFunc(p)
	if err != nil {
		return domain.User{}, err
	}
	if enable, ok := p.Value.(bool); p.Path == "disabled" && ok && !enable {
		u, err := s.ResetLoginAttempts(ctx, username)
		if err != nil {
			return domain.User{}, err
		}
		slogx.FromContext(ctx).Info("user patched", slog.String("username", username), slog.String("path", p.Path))
		return u, nil
	}

	for attempt := 1; ; attempt++ {
		u, err := s.Store.Users().GetUserByUsername(ctx, username)
		if err != nil {
			return domain.User{}, s.lookupError(ctx, username, err)
		}
		expected := u.Version
		apply(&u)

		updated, err := s.Store.Users().UpdateUser(ctx, u, expected)
		if errors.Is(err, store.ErrVersionConflict) {
			if attempt < patchAttempts {
				continue
			}
			return domain.User{}, newError(ErrConflict, "user [%s] was modified concurrently", username)
		}
		if err != nil {
			return domain.User{}, s.lookupError(ctx, username, err)
		}

		slogx.FromContext(ctx).Info("user patched",
			slog.String("username", username),
			slog.String("path", p.Path),
		)
		return s.withLinks(updated), nil
	}
}

const patchAttempts = 3

// patchFunc checks the patch and returns the change it makes to a user.
func patchFunc(p Patch) (func(u *domain.User), error) {
	switch p.Path {
	case "disabled":
		disabled, ok := p.Value.(bool)
		if !ok {
			return nil, newError(ErrUnprocessable, "value for path [disabled] must be a boolean")
		}
		return func(u *domain.User) {
			if disabled && !u.Disabled {
				u.SessionVersion++
			}
			u.Disabled = disabled
		}, nil
	case "telephone_number":
		tel, ok := p.Value.(string)
		if !ok {
			return nil, newError(ErrUnprocessable, "value for path [telephone_number] must be a string")
		}
		return func(u *domain.User) { u.TelephoneNumber = tel }, nil
	default:
		return nil, newError(ErrUnprocessable, "path [%s] is not patchable", p.Path)
	}
}

// recordSuccess zeroes the counter. The store only matches enabled accounts,
// so a miss means the account was locked or removed meanwhile.
func (s *UserService) recordSuccess(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().RecordLoginSuccess(ctx, username)
	if err == nil {
		return s.withLinks(u), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, internal("failed to record login", err)
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err != nil {
		return domain.User{}, s.lookupError(ctx, username, err)
	}
	return domain.User{}, newError(ErrLocked, "user account is disabled")
}

func (s *UserService) createError(ctx context.Context, u domain.User, err error) error {
	var uv *store.UniqueViolationError
	if errors.As(err, &uv) {
		slogx.FromContext(ctx).Warn("user already exists",
			slog.String("username", u.Username),
			slog.String("field", uv.Field),
		)
		switch uv.Field {
		case "email":
			return newError(ErrConflict, "email [%s] already exists", u.Email)
		default:
			return newError(ErrConflict, "username [%s] already exists", u.Username)
		}
	}
	return internal("failed to create user", err)
}

func (s *UserService) lookupError(ctx context.Context, username string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrNotFound, "user [%s] not found", username)
	}
	slogx.FromContext(ctx).Error("user store failure",
		slog.String("username", username),
		slog.Any("error", err),
	)
	return internal("failed to load user", err)
}

func (s *UserService) withLinks(u domain.User) domain.User {
	u.Links = []domain.Link{s.Links.UserSelf(u.Username)}
	return u
}
