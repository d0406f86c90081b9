package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flintandflours/storefront/config"
	"github.com/flintandflours/storefront/internal/email"
	"github.com/flintandflours/storefront/internal/health"
	"github.com/flintandflours/storefront/internal/infrastructure/postgres"
	ctxlog "github.com/flintandflours/storefront/internal/log"
	"github.com/flintandflours/storefront/internal/metrics"
	"github.com/flintandflours/storefront/internal/payment"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/flintandflours/storefront/internal/subscription"
	httptransport "github.com/flintandflours/storefront/internal/transport/http"
	"github.com/flintandflours/storefront/internal/transport/http/handler"
	"github.com/flintandflours/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rates, err := cfg.RegionRates()
	if err != nil {
		stop()
		log.Fatalf("rates: %v", err)
	}
	delivery, fallback := cfg.DeliveryPolicies()
	engine := pricing.NewEngine(rates, delivery, fallback)

	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	gateway := payment.NewLogGateway(cfg.LinkBaseURL, logger)

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, emailSender, usecase.AuthConfig{
		JWTKey:          []byte(cfg.JWTSecret),
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		VerificationTTL: cfg.VerificationTokenTTL,
		ResetTTL:        cfg.ResetTokenTTL,
		LinkBaseURL:     cfg.LinkBaseURL,
	}, logger)
	catalogUsecase := usecase.NewCatalogUsecase(productRepo, engine)
	cartUsecase := usecase.NewCartUsecase(productRepo, engine)
	orderUsecase := usecase.NewOrderUsecase(orderRepo, cartUsecase, gateway, emailSender, logger)
	subscriptionUsecase := usecase.NewSubscriptionUsecase(subscriptionRepo, productRepo)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:        logger,
		Auth:          handler.NewAuthHandler(authUsecase, logger),
		Products:      handler.NewProductHandler(catalogUsecase, logger),
		Cart:          handler.NewCartHandler(cartUsecase, logger),
		Orders:        handler.NewOrderHandler(orderUsecase, logger),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionUsecase, logger),
		AuthUsecase:   authUsecase,
		Users:         userRepo,
		Health:        checker,
	})

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	dispatcher := subscription.NewDispatcher(
		subscriptionRepo, orderRepo, productRepo,
		engine, emailSender, logger,
		cfg.SubscriptionPollInterval, cfg.SubscriptionBatchSize,
	)
	go dispatcher.Start(ctx)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
