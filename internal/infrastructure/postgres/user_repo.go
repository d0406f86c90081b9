package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, region, is_email_verified, is_admin, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, region, is_email_verified, is_admin)
		VALUES (LOWER($1), $2, $3, $4, $5)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Region,
		user.IsEmailVerified,
		user.IsAdmin,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) UpdateRegion(ctx context.Context, id string, region domain.Region) (*domain.User, error) {
	query := `
		UPDATE users SET region = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, region))
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET verification_token_hash = $2, verification_expires_at = $3, updated_at = NOW()
		 WHERE id = $1`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClaimVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	// Single atomic write: flip the flag and clear the token, but only
	// while it is still unexpired.
	query := `
		UPDATE users
		SET    is_email_verified       = TRUE,
		       verification_token_hash = NULL,
		       verification_expires_at = NULL,
		       updated_at              = NOW()
		WHERE  verification_token_hash = $1
		  AND  verification_expires_at > NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET reset_token_hash = $2, reset_expires_at = $3, updated_at = NOW()
		 WHERE id = $1`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ResetPassword(ctx context.Context, tokenHash, newPasswordHash string) (*domain.User, error) {
	query := `
		UPDATE users
		SET    password_hash    = $2,
		       reset_token_hash = NULL,
		       reset_expires_at = NULL,
		       updated_at       = NOW()
		WHERE  reset_token_hash = $1
		  AND  reset_expires_at > NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash, newPasswordHash))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Region,
		&u.IsEmailVerified, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
