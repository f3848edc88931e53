package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/domain/repository"
)

type VerificationCodeRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationCodeRepository(pool *pgxpool.Pool) *VerificationCodeRepository {
	return &VerificationCodeRepository{pool: pool}
}

// Upsert replaces any prior code for the (user, purpose) key. The primary
// key on (user_id, purpose) makes concurrent issuance converge on one row.
func (r *VerificationCodeRepository) Upsert(ctx context.Context, v *entity.VerificationCode) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verification_codes (user_id, purpose, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, purpose)
		DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`, v.UserID, v.Purpose, v.Code, v.ExpiresAt)
	return err
}

func (r *VerificationCodeRepository) Get(ctx context.Context, userID string, purpose entity.Purpose) (*entity.VerificationCode, error) {
	v := &entity.VerificationCode{}
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, purpose, code, expires_at
		FROM verification_codes
		WHERE user_id = $1 AND purpose = $2
	`, userID, purpose)
	if err := row.Scan(&v.UserID, &v.Purpose, &v.Code, &v.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *VerificationCodeRepository) Delete(ctx context.Context, userID string, purpose entity.Purpose) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM verification_codes
		WHERE user_id = $1 AND purpose = $2
	`, userID, purpose)
	return err
}

func (r *VerificationCodeRepository) CodeExists(ctx context.Context, purpose entity.Purpose, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM verification_codes WHERE purpose = $1 AND code = $2
		)
	`, purpose, code).Scan(&exists)
	return exists, err
}

var _ repository.VerificationCodeRepository = (*VerificationCodeRepository)(nil)
