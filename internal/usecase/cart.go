package usecase

import (
	"context"
	"fmt"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/metrics"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/flintandflours/storefront/internal/repository"
)

type CartUsecase struct {
	products repository.ProductRepository
	engine   *pricing.Engine
}

func NewCartUsecase(products repository.ProductRepository, engine *pricing.Engine) *CartUsecase {
	return &CartUsecase{products: products, engine: engine}
}

// PriceCart resolves the referenced products and hands the snapshot to
// the engine. The result is derived per request and never cached.
func (u *CartUsecase) PriceCart(ctx context.Context, region string, lines []domain.CartLine) (*domain.PricedCart, error) {
	parsedRegion, err := domain.ParseRegion(region)
	if err != nil {
		return nil, err
	}

	catalog, err := u.resolveProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	cart, err := u.engine.PriceCart(lines, catalog, parsedRegion)
	if err != nil {
		return nil, err
	}

	metrics.CartsPriced.WithLabelValues(region).Inc()
	return cart, nil
}

func (u *CartUsecase) resolveProducts(ctx context.Context, lines []domain.CartLine) (map[string]*domain.Product, error) {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	catalog, err := u.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	return catalog, nil
}
