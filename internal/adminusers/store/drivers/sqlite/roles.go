package sqlite

import (
	"context"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/jmoiron/sqlx"
)

type roleRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Ranking     int    `db:"ranking"`
}

func (r roleRow) toDomain() domain.Role {
	return domain.Role{ID: r.ID, Name: r.Name, Description: r.Description, Ranking: r.Ranking}
}

type rolesRepo struct {
	q sqlx.ExtContext
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var row roleRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, name, description, ranking FROM roles WHERE name = ?`, name)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var rows []roleRow
	if err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT id, name, description, ranking FROM roles ORDER BY ranking`); err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.toDomain())
	}
	return roles, nil
}
