package repository

import (
	"context"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
)

// VerificationCodeRepository persists single-use verification codes.
// Upsert must be atomic per (user, purpose) so concurrent issuance never
// leaves two live codes for the same key.
type VerificationCodeRepository interface {
	Upsert(ctx context.Context, v *entity.VerificationCode) error
	Get(ctx context.Context, userID string, purpose entity.Purpose) (*entity.VerificationCode, error)
	Delete(ctx context.Context, userID string, purpose entity.Purpose) error
	// CodeExists reports whether any live code with this value exists in
	// the purpose namespace (collision check during generation).
	CodeExists(ctx context.Context, purpose entity.Purpose, code string) (bool, error)
}
