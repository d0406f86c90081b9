package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/flintandflours/storefront/internal/health"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/flintandflours/storefront/internal/transport/http/handler"
	"github.com/flintandflours/storefront/internal/transport/http/middleware"
	"github.com/flintandflours/storefront/internal/usecase"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterDeps struct {
	Logger        *slog.Logger
	Auth          *handler.AuthHandler
	Products      *handler.ProductHandler
	Cart          *handler.CartHandler
	Orders        *handler.OrderHandler
	Subscriptions *handler.SubscriptionHandler
	AuthUsecase   *usecase.AuthUsecase
	Users         repository.UserRepository
	Health        *health.Checker
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(deps.Logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(deps.AuthUsecase, deps.Users, usecase.TokenTypeAccess)
	adminMW := middleware.RequireAdmin()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Health.Liveness(c.Request.Context()))
	})
	r.GET("/readyz", func(c *gin.Context) {
		result := deps.Health.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	auth := r.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/refresh", deps.Auth.Refresh)
	auth.POST("/verify-email", deps.Auth.VerifyEmail)
	auth.POST("/reset-password", deps.Auth.RequestPasswordReset)
	auth.POST("/reset-password-confirm", deps.Auth.ConfirmPasswordReset)

	user := r.Group("/user", authMW)
	user.GET("/profile", deps.Auth.GetProfile)
	user.PUT("/profile", deps.Auth.UpdateProfile)

	// Browsing is anonymous; the region rides on the query string.
	r.GET("/products", deps.Products.List)
	r.GET("/products/:id", deps.Products.GetByID)
	r.GET("/delivery", deps.Products.DeliveryInfo)
	r.POST("/cart/price", deps.Cart.Price)

	r.POST("/checkout", authMW, deps.Orders.Checkout)

	orders := r.Group("/orders", authMW)
	orders.GET("", deps.Orders.List)
	orders.GET("/:id", deps.Orders.GetByID)

	subs := r.Group("/subscriptions", authMW)
	subs.POST("", deps.Subscriptions.Create)
	subs.GET("", deps.Subscriptions.List)
	subs.DELETE("/:id", deps.Subscriptions.Cancel)

	admin := r.Group("/admin", authMW, adminMW)
	admin.POST("/products", deps.Products.Create)
	admin.PUT("/products/:id", deps.Products.Update)
	admin.DELETE("/products/:id", deps.Products.Delete)
	admin.GET("/orders", deps.Orders.ListAll)
	admin.PUT("/orders/:id/status", deps.Orders.UpdateStatus)

	return r
}
