package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/adminusers/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()

	stores(t, func(t *testing.T, f *fixture) {
		mustCreateUser(t, f, "alice")

		fp, err := f.forgotten.Create(ctx, "alice")
		require.NoError(t, err)
		inv, err := f.invites.CreateServiceInvite(ctx, ServiceInviteRequest{Email: "owner@example.com"})
		require.NoError(t, err)

		hk := NewHousekeepingService(f.store, slogx.Discard(), time.Hour, 24*time.Hour)
		hk.Now = f.clock.Now

		// Expired but still inside the retention window.
		f.clock.Advance(49 * time.Hour)
		hk.Cleanup(ctx)
		_, err = f.store.Invites().GetInviteByCodeHash(ctx, inv.CodeHash)
		require.NoError(t, err)
		_, err = f.store.ForgottenPasswords().GetForgottenPasswordByCodeHash(ctx, fp.CodeHash)
		require.Error(t, err, "forgotten password expired 46h ago")

		f.clock.Advance(24 * time.Hour)
		hk.Cleanup(ctx)
		_, err = f.store.Invites().GetInviteByCodeHash(ctx, inv.CodeHash)
		require.Error(t, err)
	})
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newMemFixture(t)
	hk := NewHousekeepingService(f.store, slogx.Discard(), 0, -time.Hour)
	require.Equal(t, time.Hour, hk.Interval)
	require.Zero(t, hk.Retention)

	hk.Start()
	hk.Stop()
}
