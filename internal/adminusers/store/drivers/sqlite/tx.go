package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/jmoiron/sqlx"
)

type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

// Ping is a no-op; the connection is held by the transaction.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                           { return &usersRepo{q: t.tx} }
func (t *txStore) Invites() store.Invites                       { return &invitesRepo{q: t.tx} }
func (t *txStore) ForgottenPasswords() store.ForgottenPasswords { return &forgottenPasswordsRepo{q: t.tx} }
func (t *txStore) Roles() store.Roles                           { return &rolesRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
