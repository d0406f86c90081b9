package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/email"
	"github.com/flintandflours/storefront/internal/metrics"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	minPasswordLength = 6
)

// dummyHash keeps bcrypt comparison time constant when the email is
// unknown, so login does not leak account existence through timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthConfig struct {
	JWTKey          []byte
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	LinkBaseURL     string
}

type AuthUsecase struct {
	users  repository.UserRepository
	email  email.Sender
	cfg    AuthConfig
	logger *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, cfg AuthConfig, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		email:  emailSender,
		cfg:    cfg,
		logger: logger.With("component", "auth_usecase"),
	}
}

// Register creates an unverified user, stores the hash of a fresh
// verification token, and emails the raw token link. A notifier
// failure is logged, not fatal: the user exists and can request a new
// link by re-verifying later.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, password, region string) (*domain.User, error) {
	parsedRegion, err := domain.ParseRegion(region)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        emailAddr,
		PasswordHash: string(hash),
		Region:       parsedRegion,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	rawToken, tokenHash, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(u.cfg.VerificationTTL)
	if err := u.users.SetVerificationToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("store verification token: %w", err)
	}

	subject, body := email.VerificationMessage(u.cfg.LinkBaseURL, rawToken)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send verification email", "user_id", user.ID, "error", err)
	}

	metrics.RegistrationsTotal.Inc()
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.TokenPair, error) {
	user, findErr := u.users.FindByEmail(ctx, emailAddr)

	passwordHash := dummyHash
	if findErr == nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if findErr != nil || compareErr != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return u.issueTokenPair(user.ID)
}

// Refresh validates a refresh token and rotates the pair. The
// superseded refresh token is not revoked; both stay valid until
// their embedded expiry. Stateless trade-off; there is no server-side
// revocation list.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := u.ParseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// The user must still exist; a deleted account can't mint tokens.
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return nil, domain.ErrTokenInvalid
	}

	return u.issueTokenPair(userID)
}

// ParseToken verifies signature, expiry and the type discriminator,
// returning the subject user ID. An access token never validates as a
// refresh token and vice versa.
func (u *AuthUsecase) ParseToken(rawToken, wantType string) (string, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return u.cfg.JWTKey, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return "", domain.ErrTokenInvalid
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", domain.ErrTokenInvalid
	}
	return userID, nil
}

// VerifyEmail claims the verification token: flips the verified flag
// and clears the token in one write. Terminal once verified.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	_, err := u.users.ClaimVerificationToken(ctx, hashToken(rawToken))
	return err
}

// RequestPasswordReset stores a reset token and emails the link. The
// caller always sees success; an unknown email is a silent no-op so
// account existence never leaks.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	rawToken, tokenHash, err := newOpaqueToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(u.cfg.ResetTTL)
	if err := u.users.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	subject, body := email.PasswordResetMessage(u.cfg.LinkBaseURL, rawToken)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ConfirmPasswordReset claims the reset token and replaces the hash in
// one write.
func (u *AuthUsecase) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = u.users.ResetPassword(ctx, hashToken(rawToken), string(hash))
	return err
}

// UpdateRegion changes the user's default pricing region.
func (u *AuthUsecase) UpdateRegion(ctx context.Context, userID, region string) (*domain.User, error) {
	parsedRegion, err := domain.ParseRegion(region)
	if err != nil {
		return nil, err
	}
	return u.users.UpdateRegion(ctx, userID, parsedRegion)
}

func (u *AuthUsecase) issueTokenPair(userID string) (*domain.TokenPair, error) {
	access, err := u.signToken(userID, TokenTypeAccess, u.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := u.signToken(userID, TokenTypeRefresh, u.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (u *AuthUsecase) signToken(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": tokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"jti":  uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.cfg.JWTKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// newOpaqueToken returns a random url-safe token and the SHA-256 hash
// that gets persisted in its place.
func newOpaqueToken() (rawToken, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	rawToken = hex.EncodeToString(raw)
	return rawToken, hashToken(rawToken), nil
}

func hashToken(rawToken string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
}
