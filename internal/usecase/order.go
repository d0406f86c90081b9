package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/email"
	"github.com/flintandflours/storefront/internal/metrics"
	"github.com/flintandflours/storefront/internal/payment"
	"github.com/flintandflours/storefront/internal/repository"
)

type OrderUsecase struct {
	orders  repository.OrderRepository
	cart    *CartUsecase
	gateway payment.Gateway
	email   email.Sender
	logger  *slog.Logger
}

func NewOrderUsecase(orders repository.OrderRepository, cart *CartUsecase, gateway payment.Gateway, emailSender email.Sender, logger *slog.Logger) *OrderUsecase {
	return &OrderUsecase{
		orders:  orders,
		cart:    cart,
		gateway: gateway,
		email:   emailSender,
		logger:  logger.With("component", "order_usecase"),
	}
}

type CheckoutInput struct {
	UserEmail       string
	Region          string
	Lines           []domain.CartLine
	DeliveryAddress string
}

// Checkout prices the cart server-side, snapshots the lines into an
// immutable order, and opens a checkout session with the payment
// gateway. Payment capture happens on the gateway's side; the order
// starts as pending/pending.
func (u *OrderUsecase) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, *payment.CheckoutSession, error) {
	if in.DeliveryAddress == "" {
		return nil, nil, domain.ErrMissingDeliveryAddress
	}

	cart, err := u.cart.PriceCart(ctx, in.Region, in.Lines)
	if err != nil {
		return nil, nil, err
	}

	order, err := u.orders.Create(ctx, &domain.Order{
		UserEmail:       in.UserEmail,
		Items:           snapshotItems(cart.Lines),
		Region:          domain.Region(in.Region),
		Subtotal:        cart.Subtotal,
		Tax:             cart.Tax,
		Total:           cart.Total,
		Currency:        cart.Currency,
		OrderStatus:     domain.OrderPending,
		PaymentStatus:   domain.PaymentPending,
		DeliveryAddress: in.DeliveryAddress,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	session, err := u.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderID:  order.ID,
		Amount:   order.Total,
		Currency: order.Currency,
		Region:   in.Region,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrPaymentGateway, err)
	}

	subject, body := email.OrderConfirmationMessage(order)
	if err := u.email.Send(ctx, order.UserEmail, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send order confirmation", "order_id", order.ID, "error", err)
	}

	metrics.OrdersCreated.WithLabelValues(in.Region, "checkout").Inc()
	total, _ := order.Total.Float64()
	metrics.OrderValue.WithLabelValues(order.Currency).Observe(total)

	return order, session, nil
}

// GetOrder returns an order visible to the requester: owners see their
// own, admins see all. Anything else reads as not found.
func (u *OrderUsecase) GetOrder(ctx context.Context, id string, requester *domain.User) (*domain.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin && order.UserEmail != requester.Email {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context, userEmail string) ([]*domain.Order, error) {
	return u.orders.ListByUserEmail(ctx, userEmail)
}

func (u *OrderUsecase) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return u.orders.ListAll(ctx)
}

// UpdateStatus applies an admin status change, enforcing the
// pending → confirmed → shipped → delivered transition table. A move
// to shipped triggers the shipping-update email.
func (u *OrderUsecase) UpdateStatus(ctx context.Context, id string, status string, trackingLink *string) (*domain.Order, error) {
	next := domain.OrderStatus(status)
	if !next.Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}

	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", order.OrderStatus, next, domain.ErrInvalidStatusTransition)
	}

	updated, err := u.orders.UpdateStatus(ctx, id, next, trackingLink)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if next == domain.OrderShipped {
		subject, body := email.ShippingUpdateMessage(updated)
		if err := u.email.Send(ctx, updated.UserEmail, subject, body); err != nil {
			u.logger.ErrorContext(ctx, "send shipping update", "order_id", updated.ID, "error", err)
		}
	}
	return updated, nil
}

func snapshotItems(lines []domain.PricedLine) []domain.OrderItem {
	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderItem{
			ProductID:        line.ProductID,
			Name:             line.Name,
			Quantity:         line.Quantity,
			SubscriptionType: line.SubscriptionType,
			UnitPrice:        line.UnitPrice,
			TotalPrice:       line.TotalPrice,
		}
	}
	return items
}
