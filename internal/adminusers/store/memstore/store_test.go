package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) domain.User {
	t.Helper()
	u := domain.User{
		ID:           "01J0000000000000000000USER",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		ServiceRoles: []domain.ServiceRole{{ServiceID: "svc", Role: DefaultRoles[0]}},
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestConcurrentLoginFailures(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

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
}

func TestStaleUpdateKeepsLockout(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	stale, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)

	for range 4 {
		_, err = s.Users().RecordLoginFailure(ctx, "alice", 3)
		require.NoError(t, err)
	}

	stale.TelephoneNumber = "+447700900123"
	_, err = s.Users().UpdateUser(ctx, stale, stale.Version)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	u, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, u.Disabled)
	require.Empty(t, u.TelephoneNumber)
}

func TestStaleInviteUpdateKeepsLockout(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	inv := domain.Invite{ID: "inv", CodeHash: "hash", Email: "new@example.com", Role: DefaultRoles[0], ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.Invites().CreateInvite(ctx, inv, now))

	stale, err := s.Invites().GetInviteByCodeHash(ctx, "hash")
	require.NoError(t, err)

	for range 2 {
		_, err = s.Invites().RecordOTPFailure(ctx, "hash", 1)
		require.NoError(t, err)
	}

	_, err = s.Invites().UpdateInvite(ctx, stale, stale.Version)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	got, err := s.Invites().GetInviteByCodeHash(ctx, "hash")
	require.NoError(t, err)
	require.True(t, got.Disabled)
}

func TestUniqueViolations(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	err := s.Users().CreateUser(ctx, domain.User{ID: "other", Username: "bob", Email: "alice@example.com"})
	var uv *store.UniqueViolationError
	require.True(t, errors.As(err, &uv))
	require.Equal(t, "email", uv.Field)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSessionVersionConflictLeavesUserUntouched(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	_, err := s.Users().IncrementSessionVersion(ctx, "alice", 3)
	require.ErrorIs(t, err, store.ErrVersionConflict)

	u, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, u.SessionVersion)
	require.Zero(t, u.Version)
}

func TestConcurrentInviteRedemption(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	inv := domain.Invite{ID: "inv", CodeHash: "hash", Email: "new@example.com", Role: DefaultRoles[0], ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.Invites().CreateInvite(ctx, inv, now))
	require.ErrorIs(t, s.Invites().CreateInvite(ctx, domain.Invite{ID: "inv2", CodeHash: "hash2", Email: "new@example.com", ExpiresAt: now.Add(time.Hour)}, now), store.ErrActiveInviteExists)

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			disabled := inv
			disabled.Disabled = true
			_, err := s.Invites().UpdateInvite(ctx, disabled, 0)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, store.ErrVersionConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, 19, conflicts.Load())

	// A disabled invite no longer blocks the email.
	require.NoError(t, s.Invites().CreateInvite(ctx, domain.Invite{ID: "inv3", CodeHash: "hash3", Email: "new@example.com", ExpiresAt: now.Add(time.Hour)}, now))
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback restores state", func(t *testing.T) {
		s := New()
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Users().CreateUser(ctx, domain.User{ID: "1", Username: "alice", Email: "a@example.com"}))
			_, err := tx.Users().GetUserByUsername(ctx, "alice")
			require.NoError(t, err)
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByUsername(ctx, "alice")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit keeps state", func(t *testing.T) {
		s := New()
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().CreateUser(ctx, domain.User{ID: "1", Username: "alice", Email: "a@example.com"})
		}))

		_, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		s := New()
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Tx(ctx)
			return err
		})
		require.ErrorIs(t, err, errTxClosed)
	})
}

func TestForgottenPasswordsCopyUsername(t *testing.T) {
	s := New()
	u := seed(t, s)
	ctx := context.Background()

	fp := domain.ForgottenPassword{ID: "fp", CodeHash: "h", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.ForgottenPasswords().CreateForgottenPassword(ctx, fp))

	got, err := s.ForgottenPasswords().GetForgottenPasswordByCodeHash(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	require.NoError(t, s.ForgottenPasswords().DeleteForgottenPassword(ctx, "fp"))
	require.ErrorIs(t, s.ForgottenPasswords().DeleteForgottenPassword(ctx, "fp"), store.ErrNotFound)
}

func TestListRolesOrdered(t *testing.T) {
	roles, err := New().Roles().ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, len(DefaultRoles))
	for i := 1; i < len(roles); i++ {
		require.Less(t, roles[i-1].Ranking, roles[i].Ranking)
	}
}
