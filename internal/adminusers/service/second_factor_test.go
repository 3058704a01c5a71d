package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/stretchr/testify/require"
)

func TestSecondFactor(t *testing.T) {
	ctx := context.Background()

	stores(t, func(t *testing.T, f *fixture) {
		mustCreateUser(t, f, "alice")

		require.NoError(t, f.second.SendPasscode(ctx, "alice"))
		msg := f.notifier.last(t)
		require.Equal(t, "+441134960000", msg.to)
		require.Equal(t, notify.PurposeSignIn, msg.purpose)
		require.Len(t, msg.passcode, 6)

		t.Run("code from the previous step is accepted", func(t *testing.T) {
			f.clock.Advance(time.Minute)
			_, err := f.second.Authenticate(ctx, "alice", msg.passcode)
			require.NoError(t, err)
		})

		t.Run("code three steps old is rejected", func(t *testing.T) {
			f.clock.Advance(2 * time.Minute)
			_, err := f.second.Authenticate(ctx, "alice", msg.passcode)
			require.ErrorIs(t, err, ErrUnauthorized)

			u, err := f.users.GetUser(ctx, "alice")
			require.NoError(t, err)
			require.Equal(t, 1, u.LoginCounter)
		})

		t.Run("wrong codes lock the account", func(t *testing.T) {
			for i := 0; i < 2; i++ {
				_, err := f.second.Authenticate(ctx, "alice", "000000")
				require.ErrorIs(t, err, ErrUnauthorized)
			}
			_, err := f.second.Authenticate(ctx, "alice", "000000")
			require.ErrorIs(t, err, ErrLocked)

			require.ErrorIs(t, f.second.SendPasscode(ctx, "alice"), ErrLocked)
		})

		require.ErrorIs(t, f.second.SendPasscode(ctx, "ghost"), ErrNotFound)
	})
}

func TestSecondFactorWithoutTelephone(t *testing.T) {
	f := newMemFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, NewUser{Username: "notel", Email: "notel@example.com", Password: "pw", RoleName: "admin"})
	require.NoError(t, err)

	require.ErrorIs(t, f.second.SendPasscode(ctx, "notel"), ErrUnprocessable)
}

func TestSecondFactorThrottled(t *testing.T) {
	f := newMemFixture(t)
	ctx := context.Background()
	mustCreateUser(t, f, "alice")
	f.second.Limiter = &limitAfter{n: 2}

	require.NoError(t, f.second.SendPasscode(ctx, "alice"))
	require.NoError(t, f.second.SendPasscode(ctx, "alice"))
	require.ErrorIs(t, f.second.SendPasscode(ctx, "alice"), ErrTooManyRequests)
}
