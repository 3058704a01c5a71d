package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/pkg/cryptox"
	"github.com/aussiebroadwan/adminusers/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, username string) domain.User {
	t.Helper()
	ctx := context.Background()

	role, err := s.Roles().GetRoleByName(ctx, "admin")
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		OTPKey:       "KEY",
		ServiceRoles: []domain.ServiceRole{{ServiceID: "svc-1", Role: role}},
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestRolesSeeded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	roles, err := s.Roles().ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 4)
	require.Equal(t, "admin", roles[0].Name)
	require.Equal(t, 2, roles[0].ID)

	_, err = s.Roles().GetRoleByName(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("create and load with service roles", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "alice")

		got, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "alice@example.com", got.Email)
		require.Len(t, got.ServiceRoles, 1)
		require.Equal(t, "svc-1", got.ServiceRoles[0].ServiceID)
		require.Equal(t, "admin", got.ServiceRoles[0].Role.Name)
		require.False(t, got.CreatedAt.IsZero())

		byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		_, err = s.Users().GetUserByUsername(ctx, "bob")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username names the field", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		err := s.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Username: "alice", Email: "other@example.com",
			PasswordHash: "hash", OTPKey: "KEY",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		var uv *store.UniqueViolationError
		require.True(t, errors.As(err, &uv))
		require.Equal(t, "user", uv.Entity)
		require.Equal(t, "username", uv.Field)
	})

	t.Run("duplicate email names the field", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		err := s.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Username: "alice2", Email: "alice@example.com",
			PasswordHash: "hash", OTPKey: "KEY",
		})
		var uv *store.UniqueViolationError
		require.True(t, errors.As(err, &uv))
		require.Equal(t, "email", uv.Field)
	})

	t.Run("login failures lock the account past the limit", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		for i := 1; i <= 3; i++ {
			u, err := s.Users().RecordLoginFailure(ctx, "alice", 3)
			require.NoError(t, err)
			require.Equal(t, i, u.LoginCounter)
			require.False(t, u.Disabled)
		}

		u, err := s.Users().RecordLoginFailure(ctx, "alice", 3)
		require.NoError(t, err)
		require.Equal(t, 4, u.LoginCounter)
		require.True(t, u.Disabled)

		_, err = s.Users().RecordLoginSuccess(ctx, "alice")
		require.ErrorIs(t, err, store.ErrNotFound)

		u, err = s.Users().ResetLoginAttempts(ctx, "alice")
		require.NoError(t, err)
		require.Zero(t, u.LoginCounter)
		require.False(t, u.Disabled)
	})

	t.Run("concurrent failures are all counted", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.Users().RecordLoginFailure(ctx, "alice", 10)
			}()
		}
		wg.Wait()

		u, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 50, u.LoginCounter)
		require.True(t, u.Disabled)
	})

	t.Run("session version is compare and set", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		u, err := s.Users().IncrementSessionVersion(ctx, "alice", 0)
		require.NoError(t, err)
		require.Equal(t, 1, u.SessionVersion)

		_, err = s.Users().IncrementSessionVersion(ctx, "alice", 0)
		require.ErrorIs(t, err, store.ErrVersionConflict)

		u, err = s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 1, u.SessionVersion)

		_, err = s.Users().IncrementSessionVersion(ctx, "ghost", 0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update user checks version", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		u, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)

		u.TelephoneNumber = "+441134960000"
		updated, err := s.Users().UpdateUser(ctx, u, u.Version)
		require.NoError(t, err)
		require.Equal(t, "+441134960000", updated.TelephoneNumber)
		require.Equal(t, u.Version+1, updated.Version)

		_, err = s.Users().UpdateUser(ctx, u, u.Version)
		require.ErrorIs(t, err, store.ErrVersionConflict)
	})

	t.Run("stale update cannot undo a lockout", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice")

		stale, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)

		for range 4 {
			_, err = s.Users().RecordLoginFailure(ctx, "alice", 3)
			require.NoError(t, err)
		}

		stale.TelephoneNumber = "+441134960000"
		_, err = s.Users().UpdateUser(ctx, stale, stale.Version)
		require.ErrorIs(t, err, store.ErrVersionConflict)

		u, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.True(t, u.Disabled)
		require.Equal(t, 4, u.LoginCounter)
	})
}

func newInvite(t *testing.T, s *Store, email string, expiresAt time.Time) domain.Invite {
	t.Helper()

	role, err := s.Roles().GetRoleByName(context.Background(), "admin")
	require.NoError(t, err)

	code, err := cryptox.GenerateCode(cryptox.TokenSize128)
	require.NoError(t, err)

	return domain.Invite{
		ID:        idx.New().String(),
		Code:      code,
		CodeHash:  cryptox.FingerprintToken(code),
		Email:     email,
		Type:      domain.InviteTypeService,
		Role:      role,
		OTPKey:    "SEED",
		ExpiresAt: expiresAt,
	}
}

func TestInvites(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("one active invite per email", func(t *testing.T) {
		s := newTestStore(t)

		first := newInvite(t, s, "new@example.com", now.Add(time.Hour))
		require.NoError(t, s.Invites().CreateInvite(ctx, first, now))

		second := newInvite(t, s, "new@example.com", now.Add(time.Hour))
		require.ErrorIs(t, s.Invites().CreateInvite(ctx, second, now), store.ErrActiveInviteExists)

		got, err := s.Invites().GetInviteByCodeHash(ctx, first.CodeHash)
		require.NoError(t, err)
		require.Equal(t, first.ID, got.ID)
		require.Equal(t, "admin", got.Role.Name)
		require.Equal(t, first.ExpiresAt, got.ExpiresAt)
	})

	t.Run("expired invite does not block a new one", func(t *testing.T) {
		s := newTestStore(t)

		old := newInvite(t, s, "new@example.com", now.Add(-time.Minute))
		require.NoError(t, s.Invites().CreateInvite(ctx, old, now.Add(-time.Hour)))

		fresh := newInvite(t, s, "new@example.com", now.Add(time.Hour))
		require.NoError(t, s.Invites().CreateInvite(ctx, fresh, now))

		n, err := s.Invites().DeleteExpiredInvites(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = s.Invites().GetInviteByCodeHash(ctx, old.CodeHash)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("otp failures disable past the limit", func(t *testing.T) {
		s := newTestStore(t)
		inv := newInvite(t, s, "new@example.com", now.Add(time.Hour))
		require.NoError(t, s.Invites().CreateInvite(ctx, inv, now))

		got, err := s.Invites().RecordOTPFailure(ctx, inv.CodeHash, 1)
		require.NoError(t, err)
		require.Equal(t, 1, got.LoginCounter)
		require.False(t, got.Disabled)

		got, err = s.Invites().RecordOTPFailure(ctx, inv.CodeHash, 1)
		require.NoError(t, err)
		require.True(t, got.Disabled)

		_, err = s.Invites().RecordOTPFailure(ctx, "missing", 1)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update invite checks version", func(t *testing.T) {
		s := newTestStore(t)
		inv := newInvite(t, s, "new@example.com", now.Add(time.Hour))
		require.NoError(t, s.Invites().CreateInvite(ctx, inv, now))

		inv.Disabled = true
		updated, err := s.Invites().UpdateInvite(ctx, inv, 0)
		require.NoError(t, err)
		require.True(t, updated.Disabled)
		require.Equal(t, 1, updated.Version)

		_, err = s.Invites().UpdateInvite(ctx, inv, 0)
		require.ErrorIs(t, err, store.ErrVersionConflict)

		inv.CodeHash = "missing"
		_, err = s.Invites().UpdateInvite(ctx, inv, 0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("stale update cannot re-enable a locked invite", func(t *testing.T) {
		s := newTestStore(t)
		inv := newInvite(t, s, "new@example.com", now.Add(time.Hour))
		require.NoError(t, s.Invites().CreateInvite(ctx, inv, now))

		stale, err := s.Invites().GetInviteByCodeHash(ctx, inv.CodeHash)
		require.NoError(t, err)

		for range 2 {
			_, err = s.Invites().RecordOTPFailure(ctx, inv.CodeHash, 1)
			require.NoError(t, err)
		}

		stale.TelephoneNumber = "+447700900123"
		_, err = s.Invites().UpdateInvite(ctx, stale, stale.Version)
		require.ErrorIs(t, err, store.ErrVersionConflict)

		got, err := s.Invites().GetInviteByCodeHash(ctx, inv.CodeHash)
		require.NoError(t, err)
		require.True(t, got.Disabled)
	})
}

func TestForgottenPasswords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "alice")
	now := time.Now().UTC()

	fp := domain.ForgottenPassword{
		ID:        idx.New().String(),
		CodeHash:  cryptox.FingerprintToken("code"),
		UserID:    u.ID,
		ExpiresAt: now.Add(-time.Second),
	}
	require.NoError(t, s.ForgottenPasswords().CreateForgottenPassword(ctx, fp))

	got, err := s.ForgottenPasswords().GetForgottenPasswordByCodeHash(ctx, fp.CodeHash)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.True(t, got.Expired(now))

	n, err := s.ForgottenPasswords().DeleteExpiredForgottenPasswords(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.ErrorIs(t, s.ForgottenPasswords().DeleteForgottenPassword(ctx, fp.ID), store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, "admin")
		require.NoError(t, err)
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Username: "alice", Email: "alice@example.com",
			PasswordHash: "hash", OTPKey: "KEY",
			ServiceRoles: []domain.ServiceRole{{Role: role}},
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUniqueColumn(t *testing.T) {
	t.Parallel()

	require.Equal(t, "username", uniqueColumn("constraint failed: UNIQUE constraint failed: users.username (2067)"))
	require.Equal(t, "user_id", uniqueColumn("UNIQUE constraint failed: user_services_roles.user_id, user_services_roles.service_id"))
	require.Empty(t, uniqueColumn("something else"))
}
