// Package memstore is an in-memory store.Store used by tests and by local
// runs without a database file.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

var errTxClosed = errors.New("memstore: transaction already closed")

// DefaultRoles mirrors the seed rows of the sqlite schema.
var DefaultRoles = []domain.Role{
	{ID: 2, Name: "admin", Description: "Administrator", Ranking: 1},
	{ID: 5, Name: "view-and-initiate-moto", Description: "View and take telephone payments", Ranking: 2},
	{ID: 3, Name: "view-and-refund", Description: "View and refund", Ranking: 3},
	{ID: 4, Name: "view-only", Description: "View only", Ranking: 4},
}

type state struct {
	users              map[string]domain.User              // keyed by username
	invites            map[string]domain.Invite            // keyed by code hash
	forgottenPasswords map[string]domain.ForgottenPassword // keyed by code hash
	roles              map[string]domain.Role              // keyed by name
}

func newState() *state {
	st := &state{
		users:              make(map[string]domain.User),
		invites:            make(map[string]domain.Invite),
		forgottenPasswords: make(map[string]domain.ForgottenPassword),
		roles:              make(map[string]domain.Role),
	}
	for _, r := range DefaultRoles {
		st.roles[r.Name] = r
	}
	return st
}

func (st *state) clone() *state {
	c := &state{
		users:              make(map[string]domain.User, len(st.users)),
		invites:            make(map[string]domain.Invite, len(st.invites)),
		forgottenPasswords: make(map[string]domain.ForgottenPassword, len(st.forgottenPasswords)),
		roles:              make(map[string]domain.Role, len(st.roles)),
	}
	for k, v := range st.users {
		v.ServiceRoles = append([]domain.ServiceRole(nil), v.ServiceRoles...)
		c.users[k] = v
	}
	for k, v := range st.invites {
		c.invites[k] = v
	}
	for k, v := range st.forgottenPasswords {
		c.forgottenPasswords[k] = v
	}
	for k, v := range st.roles {
		c.roles[k] = v
	}
	return c
}

// Store keeps all records behind one mutex. A transaction holds that mutex
// until it commits or rolls back, so transactions are serialised and must
// only use the repos of the Tx they were handed.
type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s} }

func (s *Store) Invites() store.Invites { return &invitesRepo{s: s} }

func (s *Store) ForgottenPasswords() store.ForgottenPasswords {
	return &forgottenPasswordsRepo{s: s}
}

func (s *Store) Roles() store.Roles { return &rolesRepo{s: s} }

func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &txStore{s: s, snapshot: s.state.clone()}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// lock guards access to the live state. Repos created by a Tx already hold
// the store mutex and skip it.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type txStore struct {
	s        *Store
	snapshot *state
	done     bool
}

func (t *txStore) Users() store.Users     { return &usersRepo{s: t.s, inTx: true} }
func (t *txStore) Invites() store.Invites { return &invitesRepo{s: t.s, inTx: true} }
func (t *txStore) ForgottenPasswords() store.ForgottenPasswords {
	return &forgottenPasswordsRepo{s: t.s, inTx: true}
}
func (t *txStore) Roles() store.Roles { return &rolesRepo{s: t.s, inTx: true} }

func (t *txStore) ApplyMigrations() error     { return nil }
func (t *txStore) Close() error               { return nil }
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errTxClosed }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errTxClosed }

func (t *txStore) Commit() error {
	if t.done {
		return errTxClosed
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return errTxClosed
	}
	t.done = true
	t.s.state = t.snapshot
	t.s.mu.Unlock()
	return nil
}
