package repository

import (
	"context"

	"github.com/flintandflours/storefront/internal/domain"
)

type OrderRepository interface {
	// Create inserts a new immutable order record. Item snapshots are
	// never updated after this point.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUserEmail(ctx context.Context, email string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	// UpdateStatus changes the order status and optionally the tracking
	// link. Legality of the transition is the usecase's concern.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string) (*domain.Order, error)
}
