package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestForgottenPassword(t *testing.T) {
	ctx := context.Background()

	stores(t, func(t *testing.T, f *fixture) {
		mustCreateUser(t, f, "alice")

		fp, err := f.forgotten.Create(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, fp.Code, 32)
		require.Equal(t, fixedNow.Add(3*time.Hour), fp.ExpiresAt)
		require.Equal(t, "http://localhost/v1/api/forgotten-passwords/"+fp.Code, fp.Links[0].Href)

		msg := f.notifier.last(t)
		require.Equal(t, "alice@example.com", msg.to)
		require.Equal(t, "http://selfservice/reset-password/"+fp.Code, msg.link)

		got, err := f.forgotten.FindNonExpired(ctx, fp.Code)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)

		_, err = f.forgotten.FindNonExpired(ctx, strings.Repeat("0", 32))
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, f.forgotten.ResetPassword(ctx, fp.Code, "new password"))

		u, err := f.users.Authenticate(ctx, "alice", "new password")
		require.NoError(t, err)
		require.Equal(t, 1, u.SessionVersion)

		// Consumed.
		_, err = f.forgotten.FindNonExpired(ctx, fp.Code)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, f.forgotten.ResetPassword(ctx, fp.Code, "again"), ErrNotFound)
	})
}

func TestForgottenPasswordExpiry(t *testing.T) {
	ctx := context.Background()

	stores(t, func(t *testing.T, f *fixture) {
		mustCreateUser(t, f, "alice")

		fp, err := f.forgotten.Create(ctx, "alice")
		require.NoError(t, err)

		f.clock.Advance(3 * time.Hour)
		_, err = f.forgotten.FindNonExpired(ctx, fp.Code)
		require.NoError(t, err, "valid up to and including the expiry instant")

		f.clock.Advance(time.Second)
		_, err = f.forgotten.FindNonExpired(ctx, fp.Code)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, f.forgotten.ResetPassword(ctx, fp.Code, "new"), ErrNotFound)
	})
}

func TestForgottenPasswordUnknownUser(t *testing.T) {
	f := newMemFixture(t)

	_, err := f.forgotten.Create(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestForgottenPasswordThrottled(t *testing.T) {
	f := newMemFixture(t)
	ctx := context.Background()
	mustCreateUser(t, f, "alice")
	f.forgotten.Limiter = &limitAfter{n: 1}

	_, err := f.forgotten.Create(ctx, "alice")
	require.NoError(t, err)

	_, err = f.forgotten.Create(ctx, "alice")
	require.ErrorIs(t, err, ErrTooManyRequests)
}
