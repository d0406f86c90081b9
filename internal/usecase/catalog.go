package usecase

import (
	"context"
	"fmt"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

type CatalogUsecase struct {
	products repository.ProductRepository
	engine   *pricing.Engine
}

func NewCatalogUsecase(products repository.ProductRepository, engine *pricing.Engine) *CatalogUsecase {
	return &CatalogUsecase{products: products, engine: engine}
}

// ListPriced returns the catalog priced for a region, optionally
// narrowed to one category.
func (u *CatalogUsecase) ListPriced(ctx context.Context, region, category string) ([]*pricing.PricedProduct, error) {
	parsedRegion, err := domain.ParseRegion(region)
	if err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{}
	if category != "" {
		c := domain.Category(category)
		if !c.Valid() {
			return nil, domain.ErrInvalidCategory
		}
		filter.Category = &c
	}

	products, err := u.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	priced := make([]*pricing.PricedProduct, 0, len(products))
	for _, p := range products {
		pp, err := u.engine.PriceProduct(p, parsedRegion)
		if err != nil {
			return nil, err
		}
		priced = append(priced, pp)
	}
	return priced, nil
}

func (u *CatalogUsecase) GetPriced(ctx context.Context, id, region string) (*pricing.PricedProduct, error) {
	parsedRegion, err := domain.ParseRegion(region)
	if err != nil {
		return nil, err
	}

	product, err := u.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.engine.PriceProduct(product, parsedRegion)
}

// DeliveryInfo is pass-through to the engine; it never fails.
func (u *CatalogUsecase) DeliveryInfo(region string) domain.DeliveryInfo {
	return u.engine.DeliveryInfo(region)
}

// ---- admin operations ----

type ProductInput struct {
	Name                 string
	Description          string
	Category             string
	BasePrice            decimal.Decimal
	SubscriptionEligible bool
	InStock              bool
	Ingredients          []string
	ImageURL             string
}

func (in ProductInput) validate() error {
	if !domain.Category(in.Category).Valid() {
		return domain.ErrInvalidCategory
	}
	if in.BasePrice.IsNegative() {
		return fmt.Errorf("base price must not be negative: %w", domain.ErrInvalidQuantity)
	}
	return nil
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Ingredients == nil {
		in.Ingredients = []string{}
	}

	created, err := u.products.Create(ctx, &domain.Product{
		Name:                 in.Name,
		Description:          in.Description,
		Category:             domain.Category(in.Category),
		BasePrice:            in.BasePrice,
		SubscriptionEligible: in.SubscriptionEligible,
		InStock:              in.InStock,
		Ingredients:          in.Ingredients,
		ImageURL:             in.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (u *CatalogUsecase) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := u.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.Category = domain.Category(in.Category)
	existing.BasePrice = in.BasePrice
	existing.SubscriptionEligible = in.SubscriptionEligible
	existing.InStock = in.InStock
	if in.Ingredients != nil {
		existing.Ingredients = in.Ingredients
	}
	existing.ImageURL = in.ImageURL

	return u.products.Update(ctx, existing)
}

func (u *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	return u.products.Delete(ctx, id)
}
