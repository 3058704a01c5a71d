package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrVersionConflict is returned by optimistic updates when the stored
	// version no longer matches the caller's expected version.
	ErrVersionConflict = errors.New("store: version conflict")

	// ErrActiveInviteExists is returned by CreateInvite when the email already
	// has a non-expired, non-disabled invite.
	ErrActiveInviteExists = errors.New("store: active invite exists for email")
)

// UniqueViolationError reports which unique key an insert collided with, so
// callers never have to inspect driver error messages.
type UniqueViolationError struct {
	Entity string // "user", "invite", "forgotten_password"
	Field  string // "username", "email", "code", ...
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("store: %s with this %s already exists", e.Entity, e.Field)
}

func (e *UniqueViolationError) Unwrap() error { return ErrAlreadyExists }

// Store is the root data access interface. Concrete drivers (sqlite, memory)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and keeps transactions from being nested.
type Store interface {
	Users() Users
	Invites() Invites
	ForgottenPasswords() ForgottenPasswords
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername matches the username exactly.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail matches the lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts the user and its service roles. A duplicate username
	// or email yields *UniqueViolationError naming the field.
	CreateUser(ctx context.Context, u domain.User) error

	// RecordLoginFailure increments the login counter in a single statement
	// and disables the account once the new value exceeds limit.
	//
	// Every counter or lockout change below increments the version, so an
	// UpdateUser holding an older copy fails with ErrVersionConflict.
	RecordLoginFailure(ctx context.Context, username string, limit int) (domain.User, error)

	// RecordLoginSuccess zeroes the login counter of an enabled account.
	// ErrNotFound is returned when no enabled account matches.
	RecordLoginSuccess(ctx context.Context, username string) (domain.User, error)

	// ResetLoginAttempts zeroes the counter and re-enables the account.
	ResetLoginAttempts(ctx context.Context, username string) (domain.User, error)

	// IncrementSessionVersion bumps the session version iff it currently
	// equals expected, otherwise ErrVersionConflict with nothing written.
	IncrementSessionVersion(ctx context.Context, username string, expected int) (domain.User, error)

	// UpdateUser writes the mutable fields of u (password hash, otp key,
	// telephone, disabled, session version) iff the stored version equals
	// expectedVersion. The version is incremented on success.
	UpdateUser(ctx context.Context, u domain.User, expectedVersion int) (domain.User, error)
}

type Invites interface {
	// CreateInvite inserts inv unless an invite for the same email is still
	// active at now, in which case ErrActiveInviteExists is returned. The
	// check and insert happen atomically.
	CreateInvite(ctx context.Context, inv domain.Invite, now time.Time) error

	// GetInviteByCodeHash returns the invite regardless of its state.
	GetInviteByCodeHash(ctx context.Context, codeHash string) (domain.Invite, error)

	// RecordOTPFailure increments the invite's login counter and disables it
	// once the new value exceeds limit. The version is incremented.
	RecordOTPFailure(ctx context.Context, codeHash string, limit int) (domain.Invite, error)

	// UpdateInvite writes telephone, password hash, otp key and disabled iff
	// the stored version equals expectedVersion.
	UpdateInvite(ctx context.Context, inv domain.Invite, expectedVersion int) (domain.Invite, error)

	// DeleteExpiredInvites removes invites that expired before the cutoff.
	DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error)
}

type ForgottenPasswords interface {
	CreateForgottenPassword(ctx context.Context, fp domain.ForgottenPassword) error

	// GetForgottenPasswordByCodeHash returns the token regardless of expiry.
	GetForgottenPasswordByCodeHash(ctx context.Context, codeHash string) (domain.ForgottenPassword, error)

	DeleteForgottenPassword(ctx context.Context, id string) error

	// DeleteExpiredForgottenPasswords removes tokens that expired before the cutoff.
	DeleteExpiredForgottenPasswords(ctx context.Context, before time.Time) (int64, error)
}

type Roles interface {
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRoles returns all roles ordered by ranking.
	ListRoles(ctx context.Context) ([]domain.Role, error)
}
