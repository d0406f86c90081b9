package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/payment"
	"github.com/flintandflours/storefront/internal/transport/http/middleware"
	"github.com/flintandflours/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
)

type orderUsecaser interface {
	Checkout(ctx context.Context, in usecase.CheckoutInput) (*domain.Order, *payment.CheckoutSession, error)
	GetOrder(ctx context.Context, id string, requester *domain.User) (*domain.Order, error)
	ListOrders(ctx context.Context, userEmail string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status string, trackingLink *string) (*domain.Order, error)
}

type OrderHandler struct {
	orders orderUsecaser
	logger *slog.Logger
}

func NewOrderHandler(orders orderUsecaser, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger.With("component", "order_handler")}
}

type checkoutRequest struct {
	Region          string            `json:"region"           binding:"required"`
	Items           []cartItemRequest `json:"items"            binding:"required"`
	DeliveryAddress string            `json:"delivery_address" binding:"required"`
}

type orderItemResponse struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	SubscriptionType string `json:"subscription_type"`
	UnitPrice        string `json:"unit_price"`
	TotalPrice       string `json:"total_price"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Items           []orderItemResponse `json:"items"`
	Region          string              `json:"region"`
	Subtotal        string              `json:"subtotal"`
	Tax             string              `json:"tax"`
	Total           string              `json:"total"`
	Currency        string              `json:"currency"`
	OrderStatus     string              `json:"order_status"`
	PaymentStatus   string              `json:"payment_status"`
	DeliveryAddress string              `json:"delivery_address"`
	TrackingLink    *string             `json:"tracking_link,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type checkoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductID:        item.ProductID,
			Name:             item.Name,
			Quantity:         item.Quantity,
			SubscriptionType: string(item.SubscriptionType),
			UnitPrice:        item.UnitPrice.StringFixed(2),
			TotalPrice:       item.TotalPrice.StringFixed(2),
		}
	}
	return orderResponse{
		ID:              o.ID,
		Items:           items,
		Region:          string(o.Region),
		Subtotal:        o.Subtotal.StringFixed(2),
		Tax:             o.Tax.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		Currency:        o.Currency,
		OrderStatus:     string(o.OrderStatus),
		PaymentStatus:   string(o.PaymentStatus),
		DeliveryAddress: o.DeliveryAddress,
		TrackingLink:    o.TrackingLink,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderList(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// POST /checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, session, err := h.orders.Checkout(c.Request.Context(), usecase.CheckoutInput{
		UserEmail:       user.Email,
		Region:          req.Region,
		Lines:           toCartLines(req.Items),
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondError(c, h.logger, "checkout", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": toOrderResponse(order),
		"checkout": checkoutSessionResponse{
			SessionID:   session.SessionID,
			RedirectURL: session.RedirectURL,
			Amount:      session.Amount.StringFixed(2),
			Currency:    session.Currency,
		},
	})
}

// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), user.Email)
	if err != nil {
		respondError(c, h.logger, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderList(orders)})
}

// GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, h.logger, "get order", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ---- admin ----

// GET /admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orders.ListAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list all orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderList(orders)})
}

type updateStatusRequest struct {
	OrderStatus  string  `json:"order_status" binding:"required"`
	TrackingLink *string `json:"tracking_link"`
}

// PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.OrderStatus, req.TrackingLink)
	if err != nil {
		respondError(c, h.logger, "update order status", err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}
