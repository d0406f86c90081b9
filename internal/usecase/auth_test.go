package usecase_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create                 func(ctx context.Context, user *domain.User) (*domain.User, error)
	findByID               func(ctx context.Context, id string) (*domain.User, error)
	findByEmail            func(ctx context.Context, email string) (*domain.User, error)
	updateRegion           func(ctx context.Context, id string, region domain.Region) (*domain.User, error)
	setVerificationToken   func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	claimVerificationToken func(ctx context.Context, tokenHash string) (*domain.User, error)
	setResetToken          func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	resetPassword          func(ctx context.Context, tokenHash, newPasswordHash string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) UpdateRegion(ctx context.Context, id string, region domain.Region) (*domain.User, error) {
	return r.updateRegion(ctx, id, region)
}

func (r *fakeUserRepo) SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.setVerificationToken(ctx, userID, tokenHash, expiresAt)
}

func (r *fakeUserRepo) ClaimVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.claimVerificationToken(ctx, tokenHash)
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.setResetToken(ctx, userID, tokenHash, expiresAt)
}

func (r *fakeUserRepo) ResetPassword(ctx context.Context, tokenHash, newPasswordHash string) (*domain.User, error) {
	return r.resetPassword(ctx, tokenHash, newPasswordHash)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

const (
	testJWTKey   = "test-jwt-secret-at-least-32-chars!!"
	testLinkBase = "http://localhost:8080"
)

func newAuth(repo *fakeUserRepo, sender *fakeEmailSender) *usecase.AuthUsecase {
	cfg := usecase.AuthConfig{
		JWTKey:          []byte(testJWTKey),
		AccessTTL:       30 * time.Minute,
		RefreshTTL:      168 * time.Hour,
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        time.Hour,
		LinkBaseURL:     testLinkBase,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usecase.NewAuthUsecase(repo, sender, cfg, logger)
}

var testUser = &domain.User{ID: "user-1", Email: "baker@example.com", Region: domain.RegionIndia}

// extractToken pulls the raw token out of a link in an email body.
func extractToken(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "?token=")
	if idx == -1 {
		t.Fatal("email body does not contain ?token=")
	}
	return strings.SplitN(body[idx+len("?token="):], `"`, 2)[0]
}

// ---- Register ----

func TestRegister_StoresHashOfEmailedToken(t *testing.T) {
	var capturedHash string
	var capturedBody string

	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			created := *user
			created.ID = testUser.ID
			return &created, nil
		},
		setVerificationToken: func(_ context.Context, _, tokenHash string, _ time.Time) error {
			capturedHash = tokenHash
			return nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, body string) error {
			capturedBody = body
			return nil
		},
	}

	if _, err := newAuth(repo, sender).Register(context.Background(), testUser.Email, "password123", "India"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rawToken := extractToken(t, capturedBody)
	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	if capturedHash != wantHash {
		t.Errorf("stored hash %q != SHA-256 of emailed token %q", capturedHash, wantHash)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	var capturedHash string

	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			capturedHash = user.PasswordHash
			created := *user
			created.ID = testUser.ID
			return &created, nil
		},
		setVerificationToken: func(_ context.Context, _, _ string, _ time.Time) error { return nil },
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return nil },
	}

	if _, err := newAuth(repo, sender).Register(context.Background(), testUser.Email, "password123", "India"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedHash == "password123" {
		t.Fatal("password was stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(capturedHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	sender := &fakeEmailSender{}

	_, err := newAuth(repo, sender).Register(context.Background(), testUser.Email, "password123", "India")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	_, err := newAuth(&fakeUserRepo{}, &fakeEmailSender{}).Register(context.Background(), testUser.Email, "short", "India")
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Errorf("want ErrWeakPassword, got %v", err)
	}
}

func TestRegister_InvalidRegion(t *testing.T) {
	for _, region := range []string{"", "india", "USA", "CANADA"} {
		_, err := newAuth(&fakeUserRepo{}, &fakeEmailSender{}).Register(context.Background(), testUser.Email, "password123", region)
		if !errors.Is(err, domain.ErrInvalidRegion) {
			t.Errorf("region %q: want ErrInvalidRegion, got %v", region, err)
		}
	}
}

func TestRegister_EmailFailureIsNotFatal(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			created := *user
			created.ID = testUser.ID
			return &created, nil
		},
		setVerificationToken: func(_ context.Context, _, _ string, _ time.Time) error { return nil },
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return errors.New("smtp unavailable") },
	}

	user, err := newAuth(repo, sender).Register(context.Background(), testUser.Email, "password123", "Canada")
	if err != nil {
		t.Fatalf("registration failed on email error: %v", err)
	}
	if user.ID != testUser.ID {
		t.Errorf("user ID = %q, want %q", user.ID, testUser.ID)
	}
}

// ---- Login ----

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := *testUser
	u.PasswordHash = string(hash)
	return &u
}

func TestLogin_IssuesValidAccessToken(t *testing.T) {
	stored := userWithPassword(t, "password123")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
	}

	auth := newAuth(repo, &fakeEmailSender{})
	pair, err := auth.Login(context.Background(), testUser.Email, "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userID, err := auth.ParseToken(pair.AccessToken, usecase.TokenTypeAccess)
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	if userID != testUser.ID {
		t.Errorf("sub = %q, want %q", userID, testUser.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	stored := userWithPassword(t, "password123")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
	}

	_, err := newAuth(repo, &fakeEmailSender{}).Login(context.Background(), testUser.Email, "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := newAuth(repo, &fakeEmailSender{}).Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

// ---- token parsing ----

func TestParseToken_RejectsWrongType(t *testing.T) {
	stored := userWithPassword(t, "password123")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
	}

	auth := newAuth(repo, &fakeEmailSender{})
	pair, err := auth.Login(context.Background(), testUser.Email, "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := auth.ParseToken(pair.AccessToken, usecase.TokenTypeRefresh); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("access token validated as refresh: %v", err)
	}
	if _, err := auth.ParseToken(pair.RefreshToken, usecase.TokenTypeAccess); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("refresh token validated as access: %v", err)
	}
}

func TestParseToken_RejectsForeignSignature(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  testUser.ID,
		"type": usecase.TokenTypeAccess,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("some-other-secret-of-32-characters"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	auth := newAuth(&fakeUserRepo{}, &fakeEmailSender{})
	if _, err := auth.ParseToken(signed, usecase.TokenTypeAccess); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

// ---- Refresh ----

func TestRefresh_RotatesPair(t *testing.T) {
	stored := userWithPassword(t, "password123")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
		findByID:    func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
	}

	auth := newAuth(repo, &fakeEmailSender{})
	pair, err := auth.Login(context.Background(), testUser.Email, "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rotated, err := auth.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.AccessToken == pair.AccessToken {
		t.Error("rotated access token equals the original")
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("rotated refresh token equals the original")
	}

	if _, err := auth.ParseToken(rotated.RefreshToken, usecase.TokenTypeRefresh); err != nil {
		t.Errorf("rotated refresh token does not parse: %v", err)
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	stored := userWithPassword(t, "password123")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
		findByID: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	auth := newAuth(repo, &fakeEmailSender{})
	pair, err := auth.Login(context.Background(), testUser.Email, "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := auth.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	stored := userWithPassword(t, "password123")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
		findByID:    func(_ context.Context, _ string) (*domain.User, error) { return stored, nil },
	}

	auth := newAuth(repo, &fakeEmailSender{})
	pair, err := auth.Login(context.Background(), testUser.Email, "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := auth.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("access token accepted for refresh: %v", err)
	}
}

// ---- email verification ----

func TestVerifyEmail_ClaimsHashedToken(t *testing.T) {
	const rawToken = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	expectedHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))

	repo := &fakeUserRepo{
		claimVerificationToken: func(_ context.Context, tokenHash string) (*domain.User, error) {
			if tokenHash != expectedHash {
				return nil, domain.ErrTokenInvalid
			}
			return testUser, nil
		},
	}

	if err := newAuth(repo, &fakeEmailSender{}).VerifyEmail(context.Background(), rawToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	repo := &fakeUserRepo{
		claimVerificationToken: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrTokenInvalid
		},
	}

	err := newAuth(repo, &fakeEmailSender{}).VerifyEmail(context.Background(), "bad-token")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

// ---- password reset ----

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	sent := false
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			sent = true
			return nil
		},
	}

	if err := newAuth(repo, sender).RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email leaked as error: %v", err)
	}
	if sent {
		t.Error("reset email sent for unknown account")
	}
}

func TestRequestPasswordReset_StoresHashOfEmailedToken(t *testing.T) {
	var capturedHash string
	var capturedBody string

	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return testUser, nil },
		setResetToken: func(_ context.Context, _, tokenHash string, _ time.Time) error {
			capturedHash = tokenHash
			return nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, body string) error {
			capturedBody = body
			return nil
		},
	}

	if err := newAuth(repo, sender).RequestPasswordReset(context.Background(), testUser.Email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rawToken := extractToken(t, capturedBody)
	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	if capturedHash != wantHash {
		t.Errorf("stored hash %q != SHA-256 of emailed token %q", capturedHash, wantHash)
	}
}

func TestConfirmPasswordReset_WeakPassword(t *testing.T) {
	err := newAuth(&fakeUserRepo{}, &fakeEmailSender{}).ConfirmPasswordReset(context.Background(), "token", "abc")
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Errorf("want ErrWeakPassword, got %v", err)
	}
}

func TestConfirmPasswordReset_StoresNewHash(t *testing.T) {
	var capturedHash string
	repo := &fakeUserRepo{
		resetPassword: func(_ context.Context, _, newPasswordHash string) (*domain.User, error) {
			capturedHash = newPasswordHash
			return testUser, nil
		},
	}

	if err := newAuth(repo, &fakeEmailSender{}).ConfirmPasswordReset(context.Background(), "token", "fresh-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(capturedHash), []byte("fresh-password")); err != nil {
		t.Errorf("stored hash does not verify against the new password: %v", err)
	}
}

// ---- profile ----

func TestUpdateRegion_InvalidRegion(t *testing.T) {
	_, err := newAuth(&fakeUserRepo{}, &fakeEmailSender{}).UpdateRegion(context.Background(), testUser.ID, "Mars")
	if !errors.Is(err, domain.ErrInvalidRegion) {
		t.Errorf("want ErrInvalidRegion, got %v", err)
	}
}
