package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/jmoiron/sqlx"
)

type forgottenPasswordRow struct {
	ID        string `db:"id"`
	CodeHash  string `db:"code_hash"`
	UserID    string `db:"user_id"`
	Username  string `db:"username"`
	ExpiresAt int64  `db:"expires_at"`
	CreatedAt int64  `db:"created_at"`
}

type forgottenPasswordsRepo struct {
	q sqlx.ExtContext
}

func (r *forgottenPasswordsRepo) CreateForgottenPassword(ctx context.Context, fp domain.ForgottenPassword) error {
	if fp.CreatedAt.IsZero() {
		fp.CreatedAt = time.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO forgotten_passwords (id, code_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		fp.ID, fp.CodeHash, fp.UserID, toMillis(fp.ExpiresAt), toMillis(fp.CreatedAt),
	)
	if err != nil {
		return mapUniqueViolation(err, "forgotten_password")
	}
	return nil
}

func (r *forgottenPasswordsRepo) GetForgottenPasswordByCodeHash(ctx context.Context, codeHash string) (domain.ForgottenPassword, error) {
	var row forgottenPasswordRow
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT fp.id, fp.code_hash, fp.user_id, u.username, fp.expires_at, fp.created_at
		FROM forgotten_passwords fp
		JOIN users u ON u.id = fp.user_id
		WHERE fp.code_hash = ?`, codeHash)
	if err != nil {
		return domain.ForgottenPassword{}, mapNotFound(err)
	}
	return domain.ForgottenPassword{
		ID:        row.ID,
		CodeHash:  row.CodeHash,
		UserID:    row.UserID,
		Username:  row.Username,
		ExpiresAt: fromMillis(row.ExpiresAt),
		CreatedAt: fromMillis(row.CreatedAt),
	}, nil
}

func (r *forgottenPasswordsRepo) DeleteForgottenPassword(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM forgotten_passwords WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *forgottenPasswordsRepo) DeleteExpiredForgottenPasswords(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM forgotten_passwords WHERE expires_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
