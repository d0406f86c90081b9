package repository

import (
	"context"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrDuplicateEmail when
	// the email unique index rejects the insert.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	UpdateRegion(ctx context.Context, id string, region domain.Region) (*domain.User, error)

	SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ClaimVerificationToken atomically marks the owning user verified
	// and clears the token. Returns domain.ErrTokenInvalid if the hash
	// is unknown or past expiry.
	ClaimVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error)

	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ResetPassword atomically replaces the password hash and clears
	// the reset token. Returns domain.ErrTokenInvalid if the hash is
	// unknown or past expiry.
	ResetPassword(ctx context.Context, tokenHash, newPasswordHash string) (*domain.User, error)
}
