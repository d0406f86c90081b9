package repository

import (
	"context"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	GetByID(ctx context.Context, id, userEmail string) (*domain.Subscription, error)
	ListByUserEmail(ctx context.Context, email string) ([]*domain.Subscription, error)
	Cancel(ctx context.Context, id, userEmail string) error

	// ClaimAndAdvance atomically claims up to limit due active
	// subscriptions (FOR UPDATE SKIP LOCKED, so concurrent dispatchers
	// never double-run one), stamps last_run_at and advances
	// next_run_at using next. Returns the claimed subscriptions.
	ClaimAndAdvance(ctx context.Context, limit int, next func(*domain.Subscription) time.Time) ([]*domain.Subscription, error)

	// Deactivate pauses a subscription the dispatcher can no longer
	// fulfil, e.g. its product was deleted.
	Deactivate(ctx context.Context, id string) error
}
