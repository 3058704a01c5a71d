package memstore

import (
	"context"
	"sort"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

type rolesRepo struct {
	s    *Store
	inTx bool
}

func (r *rolesRepo) GetRoleByName(_ context.Context, name string) (domain.Role, error) {
	defer r.s.lock(r.inTx)()
	role, ok := r.s.state.roles[name]
	if !ok {
		return domain.Role{}, store.ErrNotFound
	}
	return role, nil
}

func (r *rolesRepo) ListRoles(context.Context) ([]domain.Role, error) {
	defer r.s.lock(r.inTx)()
	roles := make([]domain.Role, 0, len(r.s.state.roles))
	for _, role := range r.s.state.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Ranking < roles[j].Ranking })
	return roles, nil
}
