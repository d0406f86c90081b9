package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)

type User struct {
	ID              string
	Email           string
	PasswordHash    string
	Region          Region
	IsEmailVerified bool
	IsAdmin         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccountToken is an opaque single-use token (email verification or
// password reset). Only its SHA-256 hash is stored; the raw value goes
// out in the email and is never persisted.
type AccountToken struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
