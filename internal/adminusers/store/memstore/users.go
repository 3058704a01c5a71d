package memstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

type usersRepo struct {
	s    *Store
	inTx bool
}

func (r *usersRepo) GetUserByID(_ context.Context, id string) (domain.User, error) {
	defer r.s.lock(r.inTx)()
	for _, u := range r.s.state.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	defer r.s.lock(r.inTx)()
	u, ok := r.s.state.users[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *usersRepo) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	defer r.s.lock(r.inTx)()
	for _, u := range r.s.state.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) CreateUser(_ context.Context, u domain.User) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.state.users[u.Username]; ok {
		return &store.UniqueViolationError{Entity: "user", Field: "username"}
	}
	for _, existing := range r.s.state.users {
		if existing.ID == u.ID {
			return &store.UniqueViolationError{Entity: "user", Field: "id"}
		}
		if existing.Email == u.Email {
			return &store.UniqueViolationError{Entity: "user", Field: "email"}
		}
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	r.s.state.users[u.Username] = copyUser(u)
	return nil
}

func (r *usersRepo) RecordLoginFailure(_ context.Context, username string, limit int) (domain.User, error) {
	return r.mutate(username, func(u *domain.User) error {
		u.LoginCounter++
		if u.LoginCounter > limit {
			u.Disabled = true
		}
		u.Version++
		return nil
	})
}

func (r *usersRepo) RecordLoginSuccess(_ context.Context, username string) (domain.User, error) {
	return r.mutate(username, func(u *domain.User) error {
		if u.Disabled {
			return store.ErrNotFound
		}
		u.LoginCounter = 0
		u.Version++
		return nil
	})
}

func (r *usersRepo) ResetLoginAttempts(_ context.Context, username string) (domain.User, error) {
	return r.mutate(username, func(u *domain.User) error {
		u.LoginCounter = 0
		u.Disabled = false
		u.Version++
		return nil
	})
}

func (r *usersRepo) IncrementSessionVersion(_ context.Context, username string, expected int) (domain.User, error) {
	return r.mutate(username, func(u *domain.User) error {
		if u.SessionVersion != expected {
			return store.ErrVersionConflict
		}
		u.SessionVersion++
		u.Version++
		return nil
	})
}

func (r *usersRepo) UpdateUser(_ context.Context, in domain.User, expectedVersion int) (domain.User, error) {
	return r.mutate(in.Username, func(u *domain.User) error {
		if u.Version != expectedVersion {
			return store.ErrVersionConflict
		}
		u.PasswordHash = in.PasswordHash
		u.OTPKey = in.OTPKey
		u.TelephoneNumber = in.TelephoneNumber
		u.Disabled = in.Disabled
		u.SessionVersion = in.SessionVersion
		u.Version++
		return nil
	})
}

// mutate applies fn to a copy of the user and stores it only when fn
// succeeds, so a rejected change leaves the record untouched.
func (r *usersRepo) mutate(username string, fn func(u *domain.User) error) (domain.User, error) {
	defer r.s.lock(r.inTx)()

	u, ok := r.s.state.users[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	u = copyUser(u)
	if err := fn(&u); err != nil {
		return domain.User{}, err
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.state.users[username] = u
	return copyUser(u), nil
}

func copyUser(u domain.User) domain.User {
	u.ServiceRoles = append([]domain.ServiceRole(nil), u.ServiceRoles...)
	return u
}
