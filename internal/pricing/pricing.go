// Package pricing is the regional commerce engine: currency conversion,
// tax computation and cart total assembly. It is pure: every method is
// a deterministic function of the catalog snapshot it is handed, the
// region, and the rate tables the engine was built with.
package pricing

import (
	"fmt"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// RegionRates holds the per-region lookup values. ConversionRate is the
// multiplier from the reference currency (INR) to the display currency.
type RegionRates struct {
	Currency       string
	ConversionRate decimal.Decimal
	TaxRate        decimal.Decimal
}

// DeliveryPolicy is the per-region delivery messaging.
type DeliveryPolicy struct {
	Available bool
	Cutoff    string
	Message   string
}

type Engine struct {
	rates            map[domain.Region]RegionRates
	delivery         map[domain.Region]DeliveryPolicy
	fallbackDelivery DeliveryPolicy
}

// NewEngine builds an engine from rate and delivery tables. Adding a
// region is a data change at the call site, not a code change here.
func NewEngine(rates map[domain.Region]RegionRates, delivery map[domain.Region]DeliveryPolicy, fallback DeliveryPolicy) *Engine {
	return &Engine{
		rates:            rates,
		delivery:         delivery,
		fallbackDelivery: fallback,
	}
}

// Rates returns the rate row for a region, or ErrInvalidRegion.
func (e *Engine) Rates(region domain.Region) (RegionRates, error) {
	r, ok := e.rates[region]
	if !ok {
		return RegionRates{}, domain.ErrInvalidRegion
	}
	return r, nil
}

// PricedProduct is a product with its display price in a region's currency.
type PricedProduct struct {
	domain.Product
	Price    decimal.Decimal
	Currency string
}

// PriceProduct converts the product's base price into the region's
// display currency, rounded to 2 decimal places.
func (e *Engine) PriceProduct(p *domain.Product, region domain.Region) (*PricedProduct, error) {
	rates, err := e.Rates(region)
	if err != nil {
		return nil, err
	}
	return &PricedProduct{
		Product:  *p,
		Price:    p.BasePrice.Mul(rates.ConversionRate).Round(2),
		Currency: rates.Currency,
	}, nil
}

// MergeLines collapses duplicate (product, subscription type) lines by
// summing quantities, preserving first-seen order. Lines with the same
// product but a different cadence stay distinct.
func MergeLines(lines []domain.CartLine) []domain.CartLine {
	type key struct {
		productID string
		subType   domain.SubscriptionType
	}

	merged := make([]domain.CartLine, 0, len(lines))
	index := make(map[key]int, len(lines))
	for _, line := range lines {
		k := key{line.ProductID, line.SubscriptionType}
		if i, ok := index[k]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// NormalizeLines merges duplicates and drops lines whose merged
// quantity is zero or negative. A non-positive quantity on a cart
// update means "remove the line".
func NormalizeLines(lines []domain.CartLine) []domain.CartLine {
	merged := MergeLines(lines)
	kept := merged[:0]
	for _, line := range merged {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	return kept
}

// PriceCart prices every line against the catalog snapshot and
// assembles subtotal, tax and total. Unknown products and out-of-stock
// products reject the whole cart; no partial result is returned.
// Intermediate arithmetic stays unrounded; only the exposed amounts are
// rounded to 2 decimal places.
func (e *Engine) PriceCart(lines []domain.CartLine, catalog map[string]*domain.Product, region domain.Region) (*domain.PricedCart, error) {
	rates, err := e.Rates(region)
	if err != nil {
		return nil, err
	}

	merged := MergeLines(lines)
	if len(merged) == 0 {
		return nil, domain.ErrEmptyCart
	}

	priced := make([]domain.PricedLine, 0, len(merged))
	subtotal := decimal.Zero
	for _, line := range merged {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrInvalidQuantity)
		}
		if !line.SubscriptionType.Valid() {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrInvalidSubscriptionType)
		}

		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrProductNotFound)
		}
		if !product.InStock {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrOutOfStock)
		}

		unit := product.BasePrice.Mul(rates.ConversionRate)
		total := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(total)

		priced = append(priced, domain.PricedLine{
			ProductID:        product.ID,
			Name:             product.Name,
			Quantity:         line.Quantity,
			SubscriptionType: line.SubscriptionType,
			UnitPrice:        unit.Round(2),
			TotalPrice:       total.Round(2),
		})
	}

	// Round subtotal and tax independently, then add, so the displayed
	// total always equals displayed subtotal + displayed tax.
	roundedSubtotal := subtotal.Round(2)
	tax := subtotal.Mul(rates.TaxRate).Round(2)

	return &domain.PricedCart{
		Lines:           priced,
		Subtotal:        roundedSubtotal,
		Tax:             tax,
		Total:           roundedSubtotal.Add(tax),
		Currency:        rates.Currency,
		DeliveryMessage: e.DeliveryInfo(string(region)).Message,
	}, nil
}

// DeliveryInfo never fails: an unknown region degrades to the
// configured fallback message instead of a hard error.
func (e *Engine) DeliveryInfo(region string) domain.DeliveryInfo {
	policy, ok := e.delivery[domain.Region(region)]
	if !ok {
		policy = e.fallbackDelivery
	}
	return domain.DeliveryInfo{
		Region:    region,
		Available: policy.Available,
		Cutoff:    policy.Cutoff,
		Message:   policy.Message,
	}
}
