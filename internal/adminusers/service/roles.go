package service

import (
	"context"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

type RolesService struct {
	Store store.Store
}

// ListAll returns every role ordered by ranking.
func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.Store.Roles().ListRoles(ctx)
	if err != nil {
		return nil, internal("failed to list roles", err)
	}
	return roles, nil
}
