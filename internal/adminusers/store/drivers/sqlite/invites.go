package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/jmoiron/sqlx"
)

const inviteColumns = `i.id, i.code_hash, i.email, i.telephone_number, i.type, i.service_id,
	i.sender, i.password_hash, i.otp_key, i.disabled, i.login_counter, i.version,
	i.expires_at, i.created_at,
	r.id AS role_id, r.name AS role_name, r.description AS role_description, r.ranking AS role_ranking`

type inviteRow struct {
	ID              string `db:"id"`
	CodeHash        string `db:"code_hash"`
	Email           string `db:"email"`
	TelephoneNumber string `db:"telephone_number"`
	Type            string `db:"type"`
	ServiceID       string `db:"service_id"`
	Sender          string `db:"sender"`
	PasswordHash    string `db:"password_hash"`
	OTPKey          string `db:"otp_key"`
	Disabled        bool   `db:"disabled"`
	LoginCounter    int    `db:"login_counter"`
	Version         int    `db:"version"`
	ExpiresAt       int64  `db:"expires_at"`
	CreatedAt       int64  `db:"created_at"`
	RoleID          int    `db:"role_id"`
	RoleName        string `db:"role_name"`
	RoleDescription string `db:"role_description"`
	RoleRanking     int    `db:"role_ranking"`
}

type invitesRepo struct {
	q sqlx.ExtContext
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite, now time.Time) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}

	// The existence check and the insert are one statement so two concurrent
	// creators for the same email cannot both succeed.
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO invites (id, code_hash, email, telephone_number, type, role_id, service_id,
			sender, password_hash, otp_key, disabled, login_counter, version, expires_at, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM invites WHERE email = ? AND disabled = 0 AND expires_at >= ?
		)`,
		inv.ID, inv.CodeHash, inv.Email, inv.TelephoneNumber, string(inv.Type), inv.Role.ID, inv.ServiceID,
		inv.Sender, inv.PasswordHash, inv.OTPKey, inv.Disabled, inv.LoginCounter, inv.Version,
		toMillis(inv.ExpiresAt), toMillis(inv.CreatedAt),
		inv.Email, toMillis(now),
	)
	if err != nil {
		return mapUniqueViolation(err, "invite")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrActiveInviteExists
	}
	return nil
}

func (r *invitesRepo) GetInviteByCodeHash(ctx context.Context, codeHash string) (domain.Invite, error) {
	return r.getOne(ctx, codeHash)
}

func (r *invitesRepo) RecordOTPFailure(ctx context.Context, codeHash string, limit int) (domain.Invite, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invites
		SET login_counter = login_counter + 1,
			disabled = CASE WHEN login_counter + 1 > ? THEN 1 ELSE disabled END,
			version = version + 1
		WHERE code_hash = ?`,
		limit, codeHash,
	)
	if err != nil {
		return domain.Invite{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Invite{}, err
	} else if n == 0 {
		return domain.Invite{}, store.ErrNotFound
	}
	return r.getOne(ctx, codeHash)
}

func (r *invitesRepo) UpdateInvite(ctx context.Context, inv domain.Invite, expectedVersion int) (domain.Invite, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invites
		SET telephone_number = ?, password_hash = ?, otp_key = ?, disabled = ?, version = version + 1
		WHERE code_hash = ? AND version = ?`,
		inv.TelephoneNumber, inv.PasswordHash, inv.OTPKey, inv.Disabled,
		inv.CodeHash, expectedVersion,
	)
	if err != nil {
		return domain.Invite{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.Invite{}, err
	}
	if n == 0 {
		if _, err := r.getOne(ctx, inv.CodeHash); err != nil {
			return domain.Invite{}, err
		}
		return domain.Invite{}, store.ErrVersionConflict
	}
	return r.getOne(ctx, inv.CodeHash)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM invites WHERE expires_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitesRepo) getOne(ctx context.Context, codeHash string) (domain.Invite, error) {
	var row inviteRow
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT `+inviteColumns+`
		FROM invites i
		JOIN roles r ON r.id = i.role_id
		WHERE i.code_hash = ?`, codeHash)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return mapInvite(row), nil
}

func mapInvite(row inviteRow) domain.Invite {
	return domain.Invite{
		ID:              row.ID,
		CodeHash:        row.CodeHash,
		Email:           row.Email,
		TelephoneNumber: row.TelephoneNumber,
		Type:            domain.InviteType(row.Type),
		Role: domain.Role{
			ID:          row.RoleID,
			Name:        row.RoleName,
			Description: row.RoleDescription,
			Ranking:     row.RoleRanking,
		},
		ServiceID:    row.ServiceID,
		Sender:       row.Sender,
		PasswordHash: row.PasswordHash,
		OTPKey:       row.OTPKey,
		Disabled:     row.Disabled,
		LoginCounter: row.LoginCounter,
		Version:      row.Version,
		ExpiresAt:    fromMillis(row.ExpiresAt),
		CreatedAt:    fromMillis(row.CreatedAt),
	}
}
