package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/transport/http/middleware"
	"github.com/flintandflours/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
)

type subscriptionUsecaser interface {
	Create(ctx context.Context, in usecase.CreateSubscriptionInput) (*domain.Subscription, error)
	List(ctx context.Context, userEmail string) ([]*domain.Subscription, error)
	Cancel(ctx context.Context, id, userEmail string) error
}

type SubscriptionHandler struct {
	subs   subscriptionUsecaser
	logger *slog.Logger
}

func NewSubscriptionHandler(subs subscriptionUsecaser, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, logger: logger.With("component", "subscription_handler")}
}

type createSubscriptionRequest struct {
	ProductID        string `json:"product_id"        binding:"required"`
	Quantity         int    `json:"quantity"          binding:"required"`
	SubscriptionType string `json:"subscription_type" binding:"required"`
	Region           string `json:"region"            binding:"required"`
	DeliveryAddress  string `json:"delivery_address"  binding:"required"`
}

type subscriptionResponse struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	Quantity         int        `json:"quantity"`
	SubscriptionType string     `json:"subscription_type"`
	Region           string     `json:"region"`
	DeliveryAddress  string     `json:"delivery_address"`
	Status           string     `json:"status"`
	NextRunAt        time.Time  `json:"next_run_at"`
	LastRunAt        *time.Time `json:"last_run_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toSubscriptionResponse(s *domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:               s.ID,
		ProductID:        s.ProductID,
		Quantity:         s.Quantity,
		SubscriptionType: string(s.Cadence),
		Region:           string(s.Region),
		DeliveryAddress:  s.DeliveryAddress,
		Status:           string(s.Status),
		NextRunAt:        s.NextRunAt,
		LastRunAt:        s.LastRunAt,
		CreatedAt:        s.CreatedAt,
	}
}

// POST /subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.subs.Create(c.Request.Context(), usecase.CreateSubscriptionInput{
		UserEmail:       user.Email,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		Cadence:         req.SubscriptionType,
		Region:          req.Region,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondError(c, h.logger, "create subscription", err)
		return
	}

	c.JSON(http.StatusCreated, toSubscriptionResponse(sub))
}

// GET /subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	subs, err := h.subs.List(c.Request.Context(), user.Email)
	if err != nil {
		respondError(c, h.logger, "list subscriptions", err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSubscriptionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// DELETE /subscriptions/:id
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.subs.Cancel(c.Request.Context(), c.Param("id"), user.Email); err != nil {
		respondError(c, h.logger, "cancel subscription", err)
		return
	}
	c.Status(http.StatusNoContent)
}
