// Package subscription runs the background loop that turns due
// subscriptions into orders.
package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/email"
	"github.com/flintandflours/storefront/internal/metrics"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/flintandflours/storefront/internal/usecase"
)

type Dispatcher struct {
	subs      repository.SubscriptionRepository
	orders    repository.OrderRepository
	products  repository.ProductRepository
	engine    *pricing.Engine
	email     email.Sender
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(
	subs repository.SubscriptionRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	engine *pricing.Engine,
	emailSender email.Sender,
	logger *slog.Logger,
	interval time.Duration,
	batchSize int,
) *Dispatcher {
	return &Dispatcher{
		subs:      subs,
		orders:    orders,
		products:  products,
		engine:    engine,
		email:     emailSender,
		logger:    logger.With("component", "subscription_dispatcher"),
		interval:  interval,
		batchSize: batchSize,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("subscription dispatcher started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("subscription dispatcher shut down")
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.SubscriptionCycleDuration.Observe(time.Since(start).Seconds())
	}()

	claimed, err := d.subs.ClaimAndAdvance(ctx, d.batchSize, d.computeNext)
	if err != nil {
		d.logger.Error("claim due subscriptions", "error", err)
		return
	}
	if len(claimed) == 0 {
		return
	}

	d.logger.Info("claimed due subscriptions", "count", len(claimed))
	for _, sub := range claimed {
		d.fire(ctx, sub)
	}
}

// computeNext returns the next future run, skipping any missed runs.
func (d *Dispatcher) computeNext(s *domain.Subscription) time.Time {
	next, err := usecase.NextCadenceRun(s.Cadence, s.NextRunAt)
	if err != nil {
		// Cadence was validated on create; this should never happen.
		d.logger.Error("invalid cadence on subscription", "subscription_id", s.ID, "cadence", s.Cadence, "error", err)
		return time.Now().Add(24 * time.Hour) // safe fallback
	}
	now := time.Now()
	for !next.After(now) {
		next, _ = usecase.NextCadenceRun(s.Cadence, next)
	}
	return next
}

// fire materializes one order for a claimed subscription. A run that
// cannot be fulfilled pauses the subscription instead of retrying
// forever.
func (d *Dispatcher) fire(ctx context.Context, sub *domain.Subscription) {
	product, err := d.products.GetByID(ctx, sub.ProductID)
	if err != nil || !product.InStock {
		d.logger.Warn("pausing unfulfillable subscription",
			"subscription_id", sub.ID, "product_id", sub.ProductID, "error", err)
		if err := d.subs.Deactivate(ctx, sub.ID); err != nil {
			d.logger.Error("deactivate subscription", "subscription_id", sub.ID, "error", err)
		}
		metrics.SubscriptionRunsTotal.WithLabelValues("skipped").Inc()
		return
	}

	cart, err := d.engine.PriceCart(
		[]domain.CartLine{{ProductID: sub.ProductID, Quantity: sub.Quantity, SubscriptionType: sub.Cadence}},
		map[string]*domain.Product{product.ID: product},
		sub.Region,
	)
	if err != nil {
		d.logger.Error("price subscription cart", "subscription_id", sub.ID, "error", err)
		metrics.SubscriptionRunsTotal.WithLabelValues("failed").Inc()
		return
	}

	order := &domain.Order{
		UserEmail:       sub.UserEmail,
		Region:          sub.Region,
		Subtotal:        cart.Subtotal,
		Tax:             cart.Tax,
		Total:           cart.Total,
		Currency:        cart.Currency,
		OrderStatus:     domain.OrderPending,
		PaymentStatus:   domain.PaymentPending,
		DeliveryAddress: sub.DeliveryAddress,
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:        line.ProductID,
			Name:             line.Name,
			Quantity:         line.Quantity,
			SubscriptionType: line.SubscriptionType,
			UnitPrice:        line.UnitPrice,
			TotalPrice:       line.TotalPrice,
		})
	}

	created, err := d.orders.Create(ctx, order)
	if err != nil {
		d.logger.Error("create subscription order", "subscription_id", sub.ID, "error", err)
		metrics.SubscriptionRunsTotal.WithLabelValues("failed").Inc()
		return
	}

	subject, body := email.OrderConfirmationMessage(created)
	if err := d.email.Send(ctx, created.UserEmail, subject, body); err != nil {
		d.logger.Error("send subscription confirmation", "order_id", created.ID, "error", err)
	}

	metrics.SubscriptionRunsTotal.WithLabelValues("fired").Inc()
	metrics.OrdersCreated.WithLabelValues(string(sub.Region), "subscription").Inc()
	d.logger.Info("subscription order created",
		"subscription_id", sub.ID, "order_id", created.ID, "total", created.Total.StringFixed(2), "currency", created.Currency)
}
