package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrEmptyCart               = errors.New("cart has no items")
	ErrMissingDeliveryAddress  = errors.New("delivery address is required")
	ErrPaymentGateway          = errors.New("payment gateway unavailable")
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces pending → confirmed → shipped → delivered,
// with cancellation allowed until the order ships.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderConfirmed || next == OrderCancelled
	case OrderConfirmed:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// OrderItem is a snapshot of a priced cart line at purchase time.
// Once written it is immutable; later catalog price changes do not
// touch existing orders.
type OrderItem struct {
	ProductID        string
	Name             string
	Quantity         int
	SubscriptionType SubscriptionType
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
}

type Order struct {
	ID              string
	UserEmail       string
	Items           []OrderItem
	Region          Region
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	OrderStatus     OrderStatus
	PaymentStatus   PaymentStatus
	DeliveryAddress string
	TrackingLink    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
