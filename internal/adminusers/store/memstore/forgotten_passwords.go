package memstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

type forgottenPasswordsRepo struct {
	s    *Store
	inTx bool
}

func (r *forgottenPasswordsRepo) CreateForgottenPassword(_ context.Context, fp domain.ForgottenPassword) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.state.forgottenPasswords[fp.CodeHash]; ok {
		return &store.UniqueViolationError{Entity: "forgotten_password", Field: "code_hash"}
	}

	var owner *domain.User
	for _, u := range r.s.state.users {
		if u.ID == fp.UserID {
			owner = &u
			break
		}
	}
	if owner == nil {
		return store.ErrNotFound
	}

	if fp.CreatedAt.IsZero() {
		fp.CreatedAt = time.Now().UTC()
	}
	fp.Code = ""
	fp.Username = owner.Username
	r.s.state.forgottenPasswords[fp.CodeHash] = fp
	return nil
}

func (r *forgottenPasswordsRepo) GetForgottenPasswordByCodeHash(_ context.Context, codeHash string) (domain.ForgottenPassword, error) {
	defer r.s.lock(r.inTx)()
	fp, ok := r.s.state.forgottenPasswords[codeHash]
	if !ok {
		return domain.ForgottenPassword{}, store.ErrNotFound
	}
	return fp, nil
}

func (r *forgottenPasswordsRepo) DeleteForgottenPassword(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	for k, fp := range r.s.state.forgottenPasswords {
		if fp.ID == id {
			delete(r.s.state.forgottenPasswords, k)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *forgottenPasswordsRepo) DeleteExpiredForgottenPasswords(_ context.Context, before time.Time) (int64, error) {
	defer r.s.lock(r.inTx)()
	var n int64
	for k, fp := range r.s.state.forgottenPasswords {
		if fp.ExpiresAt.Before(before) {
			delete(r.s.state.forgottenPasswords, k)
			n++
		}
	}
	return n, nil
}
