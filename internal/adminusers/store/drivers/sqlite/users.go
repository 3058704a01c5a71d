package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, otp_key, telephone_number,
	disabled, login_counter, session_version, version, created_at, updated_at`

type userRow struct {
	ID              string `db:"id"`
	Username        string `db:"username"`
	Email           string `db:"email"`
	PasswordHash    string `db:"password_hash"`
	OTPKey          string `db:"otp_key"`
	TelephoneNumber string `db:"telephone_number"`
	Disabled        bool   `db:"disabled"`
	LoginCounter    int    `db:"login_counter"`
	SessionVersion  int    `db:"session_version"`
	Version         int    `db:"version"`
	CreatedAt       int64  `db:"created_at"`
	UpdatedAt       int64  `db:"updated_at"`
}

type serviceRoleRow struct {
	ServiceID       string `db:"service_id"`
	RoleID          int    `db:"role_id"`
	RoleName        string `db:"role_name"`
	RoleDescription string `db:"role_description"`
	RoleRanking     int    `db:"role_ranking"`
}

type usersRepo struct {
	q sqlx.ExtContext
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.OTPKey, u.TelephoneNumber,
		u.Disabled, u.LoginCounter, u.SessionVersion, u.Version,
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	if err != nil {
		return mapUniqueViolation(err, "user")
	}

	for _, sr := range u.ServiceRoles {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO user_services_roles (user_id, service_id, role_id) VALUES (?, ?, ?)`,
			u.ID, sr.ServiceID, sr.Role.ID,
		); err != nil {
			return fmt.Errorf("insert service role: %w", mapUniqueViolation(err, "user_service_role"))
		}
	}
	return nil
}

func (r *usersRepo) RecordLoginFailure(ctx context.Context, username string, limit int) (domain.User, error) {
	return r.getOne(ctx, `
		UPDATE users
		SET login_counter = login_counter + 1,
			disabled = CASE WHEN login_counter + 1 > ? THEN 1 ELSE disabled END,
			version = version + 1,
			updated_at = ?
		WHERE username = ?
		RETURNING `+userColumns,
		limit, toMillis(time.Now()), username,
	)
}

func (r *usersRepo) RecordLoginSuccess(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `
		UPDATE users
		SET login_counter = 0, version = version + 1, updated_at = ?
		WHERE username = ? AND disabled = 0
		RETURNING `+userColumns,
		toMillis(time.Now()), username,
	)
}

func (r *usersRepo) ResetLoginAttempts(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `
		UPDATE users
		SET login_counter = 0, disabled = 0, version = version + 1, updated_at = ?
		WHERE username = ?
		RETURNING `+userColumns,
		toMillis(time.Now()), username,
	)
}

func (r *usersRepo) IncrementSessionVersion(ctx context.Context, username string, expected int) (domain.User, error) {
	u, err := r.getOne(ctx, `
		UPDATE users
		SET session_version = session_version + 1, version = version + 1, updated_at = ?
		WHERE username = ? AND session_version = ?
		RETURNING `+userColumns,
		toMillis(time.Now()), username, expected,
	)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, r.conflictOrNotFound(ctx, username)
	}
	return u, err
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User, expectedVersion int) (domain.User, error) {
	updated, err := r.getOne(ctx, `
		UPDATE users
		SET password_hash = ?, otp_key = ?, telephone_number = ?, disabled = ?,
			session_version = ?, version = version + 1, updated_at = ?
		WHERE username = ? AND version = ?
		RETURNING `+userColumns,
		u.PasswordHash, u.OTPKey, u.TelephoneNumber, u.Disabled,
		u.SessionVersion, toMillis(time.Now()), u.Username, expectedVersion,
	)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, r.conflictOrNotFound(ctx, u.Username)
	}
	return updated, err
}

// conflictOrNotFound tells a failed guarded update on an existing row apart
// from a missing row.
func (r *usersRepo) conflictOrNotFound(ctx context.Context, username string) error {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(1) FROM users WHERE username = ?`, username); err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrVersionConflict
}

func (r *usersRepo) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		return domain.User{}, mapNotFound(err)
	}

	var roles []serviceRoleRow
	if err := sqlx.SelectContext(ctx, r.q, &roles, `
		SELECT usr.service_id, r.id AS role_id, r.name AS role_name,
			r.description AS role_description, r.ranking AS role_ranking
		FROM user_services_roles usr
		JOIN roles r ON r.id = usr.role_id
		WHERE usr.user_id = ?
		ORDER BY usr.service_id`, row.ID,
	); err != nil {
		return domain.User{}, fmt.Errorf("load service roles: %w", err)
	}

	return mapUser(row, roles), nil
}

func mapUser(row userRow, roles []serviceRoleRow) domain.User {
	u := domain.User{
		ID:              row.ID,
		Username:        row.Username,
		Email:           row.Email,
		PasswordHash:    row.PasswordHash,
		OTPKey:          row.OTPKey,
		TelephoneNumber: row.TelephoneNumber,
		Disabled:        row.Disabled,
		LoginCounter:    row.LoginCounter,
		SessionVersion:  row.SessionVersion,
		Version:         row.Version,
		CreatedAt:       fromMillis(row.CreatedAt),
		UpdatedAt:       fromMillis(row.UpdatedAt),
	}
	for _, sr := range roles {
		u.ServiceRoles = append(u.ServiceRoles, domain.ServiceRole{
			ServiceID: sr.ServiceID,
			Role: domain.Role{
				ID:          sr.RoleID,
				Name:        sr.RoleName,
				Description: sr.RoleDescription,
				Ranking:     sr.RoleRanking,
			},
		})
	}
	return u
}
