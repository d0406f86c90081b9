package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidCategory = errors.New("invalid product category")
)

type Category string

const (
	CategoryCookies Category = "cookies"
	CategoryCakes   Category = "cakes"
	CategoryBreads  Category = "breads"
	CategorySnacks  Category = "snacks"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCookies, CategoryCakes, CategoryBreads, CategorySnacks:
		return true
	}
	return false
}

// Product is catalog data. BasePrice is always in the reference
// currency (INR); display prices are derived per region at read time.
type Product struct {
	ID                   string
	Name                 string
	Description          string
	Category             Category
	BasePrice            decimal.Decimal
	SubscriptionEligible bool
	InStock              bool
	Ingredients          []string
	ImageURL             string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
