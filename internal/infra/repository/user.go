package repository

import (
	"context"
	"errors"
	"time"

	"bookmarket/internal/domain/user"
	"bookmarket/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"
)

const userColumns = `
	id, email, password_hash, role, display_name,
	last_login, is_active, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, role, display_name,
			last_login, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID(), u.Email().Value(), u.PasswordHash(), string(u.Role()), u.DisplayName(),
		u.LastLogin(), u.IsActive(), u.CreatedAt(), u.UpdatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "email already registered", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to insert user", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email user.Email) (*user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email.Value())
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update last login", err)
	}
	if ct.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id                   uuid.UUID
		email, hash, role    string
		displayName          string
		lastLogin            *time.Time
		isActive             bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &email, &hash, &role, &displayName, &lastLogin, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "user not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load user", err)
	}

	parsed, err := user.NewEmail(email)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "stored email is invalid", err)
	}
	return user.ReconstructUser(id, parsed, hash, user.Role(role), displayName, lastLogin, isActive, createdAt, updatedAt), nil
}
