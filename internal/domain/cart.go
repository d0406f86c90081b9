package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity         = errors.New("quantity must be a positive integer")
	ErrInvalidSubscriptionType = errors.New("subscription type must be 'one-time', 'weekly' or 'monthly'")
)

// SubscriptionType is the delivery cadence of a cart line. Two lines
// with the same product but different cadences never merge.
type SubscriptionType string

const (
	SubscriptionOneTime SubscriptionType = "one-time"
	SubscriptionWeekly  SubscriptionType = "weekly"
	SubscriptionMonthly SubscriptionType = "monthly"
)

func (s SubscriptionType) Valid() bool {
	switch s {
	case SubscriptionOneTime, SubscriptionWeekly, SubscriptionMonthly:
		return true
	}
	return false
}

type CartLine struct {
	ProductID        string
	Quantity         int
	SubscriptionType SubscriptionType
}

// PricedLine is a cart line with regional pricing applied. Amounts are
// in the cart's currency, rounded to 2 decimal places.
type PricedLine struct {
	ProductID        string
	Name             string
	Quantity         int
	SubscriptionType SubscriptionType
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
}

// PricedCart is derived per request and never persisted.
type PricedCart struct {
	Lines           []PricedLine
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	DeliveryMessage string
}

// DeliveryInfo describes whether and how a region is served.
type DeliveryInfo struct {
	Region    string
	Available bool
	Cutoff    string
	Message   string
}
