package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/domain/repository"
)

// uniqueViolation is the Postgres error code raised by the users email
// unique constraint.
const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	definers, err := marshalDefiners(u.Definers)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password, definers)
		VALUES ($1, $2, $3, $4)
		RETURNING id, enabled, team, super, created_at, updated_at
	`, u.Name, u.Email, u.Password, definers)

	if err := row.Scan(&u.ID, &u.Enabled, &u.Team, &u.Super, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	var definers []byte

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password, enabled, team, super, definers, email_verified_at, created_at, updated_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Enabled, &u.Team, &u.Super,
		&definers, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(definers) > 0 {
		if err := json.Unmarshal(definers, &u.Definers); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	definers, err := marshalDefiners(u.Definers)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password = $3, enabled = $4, team = $5, super = $6,
		    definers = $7, email_verified_at = $8, updated_at = $9
		WHERE id = $10
	`, u.Name, u.Email, u.Password, u.Enabled, u.Team, u.Super,
		definers, u.EmailVerifiedAt, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func marshalDefiners(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

var _ repository.UserRepository = (*UserRepository)(nil)
