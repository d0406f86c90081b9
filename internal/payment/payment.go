// Package payment is the boundary to the external payment collaborator.
// The core hands it a normalized checkout request and gets back a
// session it can redirect the shopper to; capture itself happens on the
// gateway's side.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	Region   string
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
	Amount      decimal.Decimal
	Currency    string
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// LogGateway fabricates checkout sessions and logs them; it is the local
// stand-in for Stripe/Razorpay.
type LogGateway struct {
	logger  *slog.Logger
	baseURL string
}

func NewLogGateway(baseURL string, logger *slog.Logger) *LogGateway {
	return &LogGateway{
		logger:  logger.With("component", "payment_gateway"),
		baseURL: baseURL,
	}
}

func (g *LogGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	sessionID := "cs_" + uuid.NewString()
	session := &CheckoutSession{
		SessionID:   sessionID,
		RedirectURL: fmt.Sprintf("%s/pay/%s", g.baseURL, sessionID),
		Amount:      req.Amount,
		Currency:    req.Currency,
	}

	g.logger.InfoContext(ctx, "simulated checkout session",
		"order_id", req.OrderID,
		"session_id", session.SessionID,
		"amount", req.Amount.StringFixed(2),
		"currency", req.Currency,
		"region", req.Region,
	)
	return session, nil
}
