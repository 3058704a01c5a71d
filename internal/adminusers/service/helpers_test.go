package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store/drivers/sqlite"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store/memstore"
	"github.com/aussiebroadwan/adminusers/pkg/cryptox"
	"github.com/aussiebroadwan/adminusers/pkg/otpx"
	"github.com/stretchr/testify/require"
)

// fixedNow is aligned to a 60s step boundary.
var fixedNow = time.Unix(1700000040, 0).UTC()

type sent struct {
	kind      string
	to        string
	link      string
	passcode  string
	purpose   notify.Purpose
	initiator string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeNotifier) record(s sent) <-chan notify.Result {
	f.mu.Lock()
	f.sent = append(f.sent, s)
	err := f.err
	f.mu.Unlock()

	ch := make(chan notify.Result, 1)
	ch <- notify.Result{Kind: s.kind, Err: err}
	return ch
}

func (f *fakeNotifier) SendServiceInviteEmail(_ context.Context, email, inviteURL string) <-chan notify.Result {
	return f.record(sent{kind: "service_invite_email", to: email, link: inviteURL})
}

func (f *fakeNotifier) SendUserInviteEmail(_ context.Context, sender, email, inviteURL string) <-chan notify.Result {
	return f.record(sent{kind: "user_invite_email", to: email, link: inviteURL, initiator: sender})
}

func (f *fakeNotifier) SendForgottenPasswordEmail(_ context.Context, email, resetURL string) <-chan notify.Result {
	return f.record(sent{kind: "forgotten_password_email", to: email, link: resetURL})
}

func (f *fakeNotifier) SendPasscode(_ context.Context, telephone, passcode string, purpose notify.Purpose) <-chan notify.Result {
	return f.record(sent{kind: "passcode", to: telephone, passcode: passcode, purpose: purpose})
}

func (f *fakeNotifier) last(t *testing.T) sent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type limitAfter struct {
	mu    sync.Mutex
	n     int
	count map[string]int
}

func (l *limitAfter) Allow(_ context.Context, action, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == nil {
		l.count = make(map[string]int)
	}
	l.count[action+key]++
	if l.count[action+key] > l.n {
		return errors.New("limited")
	}
	return nil
}

type fixture struct {
	store     store.Store
	clock     *testClock
	otp       *otpx.Engine
	notifier  *fakeNotifier
	users     *UserService
	second    *SecondFactorService
	forgotten *ForgottenPasswordService
	invites   *InviteService
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()

	clk := &testClock{now: fixedNow}
	engine := otpx.NewEngine(otpx.DefaultPeriod, otpx.DefaultSkew)
	engine.Now = clk.Now

	hasher := cryptox.Hasher{Pepper: "test-pepper"}
	links := LinksBuilder{BaseURL: "http://localhost", SelfServiceURL: "http://selfservice/"}
	n := &fakeNotifier{}

	users := &UserService{
		Store:           st,
		Hasher:          hasher,
		OTP:             engine,
		Links:           links,
		LoginAttemptCap: 3,
		Now:             clk.Now,
	}

	return &fixture{
		store:    st,
		clock:    clk,
		otp:      engine,
		notifier: n,
		users:    users,
		second: &SecondFactorService{
			Users:    users,
			OTP:      engine,
			Notifier: n,
		},
		forgotten: &ForgottenPasswordService{
			Store:    st,
			Hasher:   hasher,
			Notifier: n,
			Links:    links,
			TTL:      DefaultForgottenPasswordTTL,
			Now:      clk.Now,
		},
		invites: &InviteService{
			Store:           st,
			Users:           users,
			Hasher:          hasher,
			OTP:             engine,
			Notifier:        n,
			Links:           links,
			DefaultRole:     DefaultInviteRole,
			TTL:             DefaultInviteTTL,
			LoginAttemptCap: 3,
			Now:             clk.Now,
		},
	}
}

func newMemFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t, memstore.New())
}

func newSQLiteFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return newFixture(t, st)
}

// stores runs fn against both store implementations.
func stores(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("memstore", func(t *testing.T) { fn(t, newMemFixture(t)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteFixture(t)) })
}

func mustCreateUser(t *testing.T, f *fixture, username string) {
	t.Helper()
	_, err := f.users.CreateUser(context.Background(), NewUser{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "correct horse",
		TelephoneNumber: "+441134960000",
		RoleName:        "admin",
		ServiceID:       "svc-1",
	})
	require.NoError(t, err)
}
