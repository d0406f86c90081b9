package repository

import (
	"context"

	"github.com/flintandflours/storefront/internal/domain"
)

// ProductFilter narrows List results. A nil Category means all categories.
type ProductFilter struct {
	Category *domain.Category
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByIDs returns the found products keyed by ID; missing IDs are
	// simply absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
