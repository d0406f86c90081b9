package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

type cartUsecaser interface {
	PriceCart(ctx context.Context, region string, lines []domain.CartLine) (*domain.PricedCart, error)
}

type CartHandler struct {
	cart   cartUsecaser
	logger *slog.Logger
}

func NewCartHandler(cart cartUsecaser, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger.With("component", "cart_handler")}
}

type cartItemRequest struct {
	ProductID        string `json:"product_id"        binding:"required"`
	Quantity         int    `json:"quantity"          binding:"required"`
	SubscriptionType string `json:"subscription_type" binding:"required"`
}

type priceCartRequest struct {
	Region string            `json:"region" binding:"required"`
	Items  []cartItemRequest `json:"items"  binding:"required"`
}

type pricedLineResponse struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	SubscriptionType string `json:"subscription_type"`
	UnitPrice        string `json:"unit_price"`
	TotalPrice       string `json:"total_price"`
}

type pricedCartResponse struct {
	Items           []pricedLineResponse `json:"items"`
	Subtotal        string               `json:"subtotal"`
	Tax             string               `json:"tax"`
	Total           string               `json:"total"`
	Currency        string               `json:"currency"`
	DeliveryMessage string               `json:"delivery_message"`
}

func toCartLines(items []cartItemRequest) []domain.CartLine {
	lines := make([]domain.CartLine, len(items))
	for i, item := range items {
		lines[i] = domain.CartLine{
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			SubscriptionType: domain.SubscriptionType(item.SubscriptionType),
		}
	}
	return lines
}

func toPricedCartResponse(cart *domain.PricedCart) pricedCartResponse {
	items := make([]pricedLineResponse, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = pricedLineResponse{
			ProductID:        line.ProductID,
			Name:             line.Name,
			Quantity:         line.Quantity,
			SubscriptionType: string(line.SubscriptionType),
			UnitPrice:        line.UnitPrice.StringFixed(2),
			TotalPrice:       line.TotalPrice.StringFixed(2),
		}
	}
	return pricedCartResponse{
		Items:           items,
		Subtotal:        cart.Subtotal.StringFixed(2),
		Tax:             cart.Tax.StringFixed(2),
		Total:           cart.Total.StringFixed(2),
		Currency:        cart.Currency,
		DeliveryMessage: cart.DeliveryMessage,
	}
}

// POST /cart/price
// Pricing is a pure read: nothing is persisted, the client shows the
// result and sends the same lines to /checkout.
func (h *CartHandler) Price(c *gin.Context) {
	var req priceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.cart.PriceCart(c.Request.Context(), req.Region, toCartLines(req.Items))
	if err != nil {
		respondError(c, h.logger, "price cart", err)
		return
	}

	c.JSON(http.StatusOK, toPricedCartResponse(cart))
}
