package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/flintandflours/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type catalogUsecaser interface {
	ListPriced(ctx context.Context, region, category string) ([]*pricing.PricedProduct, error)
	GetPriced(ctx context.Context, id, region string) (*pricing.PricedProduct, error)
	DeliveryInfo(region string) domain.DeliveryInfo
	CreateProduct(ctx context.Context, in usecase.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in usecase.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ProductHandler struct {
	catalog catalogUsecaser
	logger  *slog.Logger
}

func NewProductHandler(catalog catalogUsecaser, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger.With("component", "product_handler")}
}

type productResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	Price                string    `json:"price"`
	Currency             string    `json:"currency"`
	SubscriptionEligible bool      `json:"subscription_eligible"`
	InStock              bool      `json:"in_stock"`
	Ingredients          []string  `json:"ingredients"`
	ImageURL             string    `json:"image_url,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func toProductResponse(p *pricing.PricedProduct) productResponse {
	return productResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		Category:             string(p.Category),
		Price:                p.Price.StringFixed(2),
		Currency:             p.Currency,
		SubscriptionEligible: p.SubscriptionEligible,
		InStock:              p.InStock,
		Ingredients:          p.Ingredients,
		ImageURL:             p.ImageURL,
		CreatedAt:            p.CreatedAt,
	}
}

// GET /products?region=India&category=breads
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.catalog.ListPriced(c.Request.Context(), c.Query("region"), c.Query("category"))
	if err != nil {
		respondError(c, h.logger, "list products", err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// GET /products/:id?region=India
func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.catalog.GetPriced(c.Request.Context(), c.Param("id"), c.Query("region"))
	if err != nil {
		respondError(c, h.logger, "get product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

// GET /delivery?region=India
func (h *ProductHandler) DeliveryInfo(c *gin.Context) {
	info := h.catalog.DeliveryInfo(c.Query("region"))
	c.JSON(http.StatusOK, gin.H{
		"region":    info.Region,
		"available": info.Available,
		"cutoff":    info.Cutoff,
		"message":   info.Message,
	})
}

// ---- admin ----

type productRequest struct {
	Name                 string   `json:"name"        binding:"required"`
	Description          string   `json:"description"`
	Category             string   `json:"category"    binding:"required"`
	BasePrice            string   `json:"base_price"  binding:"required"`
	SubscriptionEligible bool     `json:"subscription_eligible"`
	InStock              bool     `json:"in_stock"`
	Ingredients          []string `json:"ingredients"`
	ImageURL             string   `json:"image_url"`
}

func (r productRequest) toInput() (usecase.ProductInput, error) {
	price, err := decimal.NewFromString(r.BasePrice)
	if err != nil {
		return usecase.ProductInput{}, err
	}
	return usecase.ProductInput{
		Name:                 r.Name,
		Description:          r.Description,
		Category:             r.Category,
		BasePrice:            price,
		SubscriptionEligible: r.SubscriptionEligible,
		InStock:              r.InStock,
		Ingredients:          r.Ingredients,
		ImageURL:             r.ImageURL,
	}, nil
}

type adminProductResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	BasePrice            string    `json:"base_price"`
	SubscriptionEligible bool      `json:"subscription_eligible"`
	InStock              bool      `json:"in_stock"`
	Ingredients          []string  `json:"ingredients"`
	ImageURL             string    `json:"image_url,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toAdminProductResponse(p *domain.Product) adminProductResponse {
	return adminProductResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		Category:             string(p.Category),
		BasePrice:            p.BasePrice.StringFixed(2),
		SubscriptionEligible: p.SubscriptionEligible,
		InStock:              p.InStock,
		Ingredients:          p.Ingredients,
		ImageURL:             p.ImageURL,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// POST /admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base_price must be a decimal string"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, toAdminProductResponse(product))
}

// PUT /admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base_price must be a decimal string"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, "update product", err)
		return
	}
	c.JSON(http.StatusOK, toAdminProductResponse(product))
}

// DELETE /admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}
