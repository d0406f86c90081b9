package pricing_test

import (
	"errors"
	"testing"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

func newEngine() *pricing.Engine {
	rates := map[domain.Region]pricing.RegionRates{
		domain.RegionIndia: {
			Currency:       "INR",
			ConversionRate: decimal.NewFromInt(1),
			TaxRate:        decimal.RequireFromString("0.18"),
		},
		domain.RegionCanada: {
			Currency:       "CAD",
			ConversionRate: decimal.RequireFromString("0.06"),
			TaxRate:        decimal.RequireFromString("0.13"),
		},
	}
	delivery := map[domain.Region]pricing.DeliveryPolicy{
		domain.RegionIndia:  {Available: true, Cutoff: "2:00 PM IST", Message: "Next-day delivery across India."},
		domain.RegionCanada: {Available: true, Cutoff: "12:00 PM ET", Message: "Delivery across Canada in 2-3 business days."},
	}
	fallback := pricing.DeliveryPolicy{Message: "We don't deliver to your region yet."}
	return pricing.NewEngine(rates, delivery, fallback)
}

func product(id string, basePrice string, inStock bool) *domain.Product {
	return &domain.Product{
		ID:        id,
		Name:      "Sourdough Loaf " + id,
		Category:  domain.CategoryBreads,
		BasePrice: decimal.RequireFromString(basePrice),
		InStock:   inStock,
	}
}

func line(productID string, qty int, subType domain.SubscriptionType) domain.CartLine {
	return domain.CartLine{ProductID: productID, Quantity: qty, SubscriptionType: subType}
}

func eq(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// ---- PriceProduct ----

func TestPriceProduct_IndiaIsIdentity(t *testing.T) {
	p, err := newEngine().PriceProduct(product("p1", "250", true), domain.RegionIndia)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq(t, "price", p.Price, "250")
	if p.Currency != "INR" {
		t.Errorf("currency = %q, want INR", p.Currency)
	}
}

func TestPriceProduct_CanadaConverts(t *testing.T) {
	p, err := newEngine().PriceProduct(product("p1", "100", true), domain.RegionCanada)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq(t, "price", p.Price, "6.00")
	if p.Currency != "CAD" {
		t.Errorf("currency = %q, want CAD", p.Currency)
	}
}

func TestPriceProduct_UnknownRegion_Rejected(t *testing.T) {
	_, err := newEngine().PriceProduct(product("p1", "100", true), domain.Region("india"))
	if !errors.Is(err, domain.ErrInvalidRegion) {
		t.Errorf("want ErrInvalidRegion, got %v", err)
	}
}

func TestPriceProduct_MonotonicInBasePrice(t *testing.T) {
	e := newEngine()
	prev := decimal.NewFromInt(-1)
	for _, base := range []string{"0", "10", "99.50", "100", "2500"} {
		p, err := e.PriceProduct(product("p1", base, true), domain.RegionCanada)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Price.LessThan(prev) {
			t.Errorf("price %s for base %s is below previous %s", p.Price, base, prev)
		}
		prev = p.Price
	}
}

// ---- PriceCart ----

func TestPriceCart_SpecScenario(t *testing.T) {
	catalog := map[string]*domain.Product{"p1": product("p1", "100", true)}
	cart, err := newEngine().PriceCart(
		[]domain.CartLine{line("p1", 2, domain.SubscriptionOneTime)},
		catalog, domain.RegionCanada,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(cart.Lines))
	}
	eq(t, "unit_price", cart.Lines[0].UnitPrice, "6.00")
	eq(t, "subtotal", cart.Subtotal, "12.00")
	eq(t, "tax", cart.Tax, "1.56")
	eq(t, "total", cart.Total, "13.56")
	if cart.Currency != "CAD" {
		t.Errorf("currency = %q, want CAD", cart.Currency)
	}
}

func TestPriceCart_IndiaGST(t *testing.T) {
	catalog := map[string]*domain.Product{
		"p1": product("p1", "150", true),
		"p2": product("p2", "80", true),
	}
	cart, err := newEngine().PriceCart(
		[]domain.CartLine{
			line("p1", 1, domain.SubscriptionOneTime),
			line("p2", 3, domain.SubscriptionWeekly),
		},
		catalog, domain.RegionIndia,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq(t, "subtotal", cart.Subtotal, "390")
	eq(t, "tax", cart.Tax, "70.20")
	eq(t, "total", cart.Total, "460.20")
}

func TestPriceCart_SubtotalIndependentOfLineOrder(t *testing.T) {
	catalog := map[string]*domain.Product{
		"p1": product("p1", "33.33", true),
		"p2": product("p2", "41.70", true),
	}
	forward := []domain.CartLine{
		line("p1", 2, domain.SubscriptionOneTime),
		line("p2", 5, domain.SubscriptionOneTime),
	}
	reversed := []domain.CartLine{forward[1], forward[0]}

	e := newEngine()
	a, err := e.PriceCart(forward, catalog, domain.RegionCanada)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.PriceCart(reversed, catalog, domain.RegionCanada)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Subtotal.Equal(b.Subtotal) || !a.Tax.Equal(b.Tax) || !a.Total.Equal(b.Total) {
		t.Errorf("totals differ by line order: %s/%s/%s vs %s/%s/%s",
			a.Subtotal, a.Tax, a.Total, b.Subtotal, b.Tax, b.Total)
	}
}

func TestPriceCart_Idempotent(t *testing.T) {
	catalog := map[string]*domain.Product{"p1": product("p1", "100", true)}
	lines := []domain.CartLine{line("p1", 2, domain.SubscriptionOneTime)}

	e := newEngine()
	first, err := e.PriceCart(lines, catalog, domain.RegionCanada)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.PriceCart(lines, catalog, domain.RegionCanada)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Total.Equal(second.Total) || len(first.Lines) != len(second.Lines) {
		t.Error("repeated pricing of the same cart produced different output")
	}
}

func TestPriceCart_UnknownProduct_NoPartialResult(t *testing.T) {
	catalog := map[string]*domain.Product{"p1": product("p1", "100", true)}
	cart, err := newEngine().PriceCart(
		[]domain.CartLine{
			line("p1", 1, domain.SubscriptionOneTime),
			line("missing", 1, domain.SubscriptionOneTime),
		},
		catalog, domain.RegionIndia,
	)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("want ErrProductNotFound, got %v", err)
	}
	if cart != nil {
		t.Error("expected nil cart on error")
	}
}

func TestPriceCart_OutOfStock_Rejected(t *testing.T) {
	catalog := map[string]*domain.Product{"p1": product("p1", "100", false)}
	_, err := newEngine().PriceCart(
		[]domain.CartLine{line("p1", 1, domain.SubscriptionOneTime)},
		catalog, domain.RegionIndia,
	)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Errorf("want ErrOutOfStock, got %v", err)
	}
}

func TestPriceCart_NonPositiveQuantity_Rejected(t *testing.T) {
	catalog := map[string]*domain.Product{"p1": product("p1", "100", true)}
	for _, qty := range []int{0, -3} {
		_, err := newEngine().PriceCart(
			[]domain.CartLine{line("p1", qty, domain.SubscriptionOneTime)},
			catalog, domain.RegionIndia,
		)
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("qty %d: want ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestPriceCart_BadSubscriptionType_Rejected(t *testing.T) {
	catalog := map[string]*domain.Product{"p1": product("p1", "100", true)}
	_, err := newEngine().PriceCart(
		[]domain.CartLine{line("p1", 1, domain.SubscriptionType("fortnightly"))},
		catalog, domain.RegionIndia,
	)
	if !errors.Is(err, domain.ErrInvalidSubscriptionType) {
		t.Errorf("want ErrInvalidSubscriptionType, got %v", err)
	}
}

// ---- merge rules ----

func TestMergeLines_SameProductSameCadence_Sums(t *testing.T) {
	merged := pricing.MergeLines([]domain.CartLine{
		line("p1", 2, domain.SubscriptionOneTime),
		line("p1", 3, domain.SubscriptionOneTime),
	})
	if len(merged) != 1 {
		t.Fatalf("merged lines = %d, want 1", len(merged))
	}
	if merged[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", merged[0].Quantity)
	}
}

func TestMergeLines_SameProductDifferentCadence_StaysDistinct(t *testing.T) {
	merged := pricing.MergeLines([]domain.CartLine{
		line("p1", 1, domain.SubscriptionOneTime),
		line("p1", 1, domain.SubscriptionWeekly),
	})
	if len(merged) != 2 {
		t.Fatalf("merged lines = %d, want 2", len(merged))
	}
}

func TestNormalizeLines_DropsNonPositive(t *testing.T) {
	normalized := pricing.NormalizeLines([]domain.CartLine{
		line("p1", 2, domain.SubscriptionOneTime),
		line("p2", 0, domain.SubscriptionOneTime),
		line("p3", -1, domain.SubscriptionMonthly),
	})
	if len(normalized) != 1 || normalized[0].ProductID != "p1" {
		t.Errorf("normalized = %+v, want only p1", normalized)
	}
}

// ---- delivery ----

func TestDeliveryInfo_KnownRegions(t *testing.T) {
	e := newEngine()
	for _, region := range []string{"India", "Canada"} {
		info := e.DeliveryInfo(region)
		if !info.Available {
			t.Errorf("%s: expected delivery available", region)
		}
		if info.Message == "" {
			t.Errorf("%s: expected a delivery message", region)
		}
	}
}

func TestDeliveryInfo_UnknownRegion_FallsBack(t *testing.T) {
	info := newEngine().DeliveryInfo("Narnia")
	if info.Available {
		t.Error("unknown region should not be available")
	}
	if info.Message == "" {
		t.Error("fallback must still carry a message")
	}
}
