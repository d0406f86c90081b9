package domain

import (
	"errors"
	"time"
)

var (
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrNotSubscriptionEligible = errors.New("product is not subscription eligible")
	ErrInvalidCadence          = errors.New("subscription cadence must be 'weekly' or 'monthly'")
	ErrSubscriptionNotActive   = errors.New("subscription is not active")
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a standing order: the dispatcher materializes an
// Order each time NextRunAt comes due, then advances it by the cadence.
type Subscription struct {
	ID              string
	UserEmail       string
	ProductID       string
	Quantity        int
	Cadence         SubscriptionType
	Region          Region
	DeliveryAddress string
	Status          SubscriptionStatus
	NextRunAt       time.Time
	LastRunAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
