package memstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

type invitesRepo struct {
	s    *Store
	inTx bool
}

func (r *invitesRepo) CreateInvite(_ context.Context, inv domain.Invite, now time.Time) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.state.invites[inv.CodeHash]; ok {
		return &store.UniqueViolationError{Entity: "invite", Field: "code_hash"}
	}
	for _, existing := range r.s.state.invites {
		if existing.Email == inv.Email && existing.Active(now) {
			return store.ErrActiveInviteExists
		}
	}

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.Code = ""
	r.s.state.invites[inv.CodeHash] = inv
	return nil
}

func (r *invitesRepo) GetInviteByCodeHash(_ context.Context, codeHash string) (domain.Invite, error) {
	defer r.s.lock(r.inTx)()
	inv, ok := r.s.state.invites[codeHash]
	if !ok {
		return domain.Invite{}, store.ErrNotFound
	}
	return inv, nil
}

func (r *invitesRepo) RecordOTPFailure(_ context.Context, codeHash string, limit int) (domain.Invite, error) {
	defer r.s.lock(r.inTx)()
	inv, ok := r.s.state.invites[codeHash]
	if !ok {
		return domain.Invite{}, store.ErrNotFound
	}
	inv.LoginCounter++
	if inv.LoginCounter > limit {
		inv.Disabled = true
	}
	inv.Version++
	r.s.state.invites[codeHash] = inv
	return inv, nil
}

func (r *invitesRepo) UpdateInvite(_ context.Context, in domain.Invite, expectedVersion int) (domain.Invite, error) {
	defer r.s.lock(r.inTx)()
	inv, ok := r.s.state.invites[in.CodeHash]
	if !ok {
		return domain.Invite{}, store.ErrNotFound
	}
	if inv.Version != expectedVersion {
		return domain.Invite{}, store.ErrVersionConflict
	}
	inv.TelephoneNumber = in.TelephoneNumber
	inv.PasswordHash = in.PasswordHash
	inv.OTPKey = in.OTPKey
	inv.Disabled = in.Disabled
	inv.Version++
	r.s.state.invites[in.CodeHash] = inv
	return inv, nil
}

func (r *invitesRepo) DeleteExpiredInvites(_ context.Context, before time.Time) (int64, error) {
	defer r.s.lock(r.inTx)()
	var n int64
	for k, inv := range r.s.state.invites {
		if inv.ExpiresAt.Before(before) {
			delete(r.s.state.invites, k)
			n++
		}
	}
	return n, nil
}
