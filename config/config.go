package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/pricing"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret       string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	LinkBaseURL  string `env:"LINK_BASE_URL"  envDefault:"http://localhost:8080"`

	// Regional commerce tables. Base prices are stored in INR; the CAD
	// rate converts them for the Canada storefront.
	IndiaTaxRate      string `env:"INDIA_TAX_RATE" envDefault:"0.18"`
	CanadaTaxRate     string `env:"CANADA_TAX_RATE" envDefault:"0.13"`
	CADConversionRate string `env:"CAD_CONVERSION_RATE" envDefault:"0.06"`

	IndiaDeliveryCutoff   string `env:"INDIA_DELIVERY_CUTOFF" envDefault:"2:00 PM IST"`
	IndiaDeliveryMessage  string `env:"INDIA_DELIVERY_MESSAGE" envDefault:"Freshly baked and delivered across India. Order by 2:00 PM IST for next-day delivery."`
	CanadaDeliveryCutoff  string `env:"CANADA_DELIVERY_CUTOFF" envDefault:"12:00 PM ET"`
	CanadaDeliveryMessage string `env:"CANADA_DELIVERY_MESSAGE" envDefault:"Artisan bakes delivered across Canada in 2-3 business days."`
	FallbackDeliveryMsg   string `env:"FALLBACK_DELIVERY_MESSAGE" envDefault:"We don't deliver to your region yet, but we're working on it!"`

	SubscriptionPollInterval time.Duration `env:"SUBSCRIPTION_POLL_INTERVAL" envDefault:"1m"`
	SubscriptionBatchSize    int           `env:"SUBSCRIPTION_BATCH_SIZE" envDefault:"50" validate:"min=1,max=500"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Fail fast on malformed rate values rather than at first request.
	if _, err := cfg.RegionRates(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// RegionRates builds the region → currency/conversion/tax lookup table.
func (c *Config) RegionRates() (map[domain.Region]pricing.RegionRates, error) {
	indiaTax, err := decimal.NewFromString(c.IndiaTaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid INDIA_TAX_RATE: %w", err)
	}
	canadaTax, err := decimal.NewFromString(c.CanadaTaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid CANADA_TAX_RATE: %w", err)
	}
	cadRate, err := decimal.NewFromString(c.CADConversionRate)
	if err != nil {
		return nil, fmt.Errorf("invalid CAD_CONVERSION_RATE: %w", err)
	}

	return map[domain.Region]pricing.RegionRates{
		domain.RegionIndia: {
			Currency:       "INR",
			ConversionRate: decimal.NewFromInt(1),
			TaxRate:        indiaTax,
		},
		domain.RegionCanada: {
			Currency:       "CAD",
			ConversionRate: cadRate,
			TaxRate:        canadaTax,
		},
	}, nil
}

// DeliveryPolicies builds the region → delivery messaging table plus
// the fallback used for unrecognized regions.
func (c *Config) DeliveryPolicies() (map[domain.Region]pricing.DeliveryPolicy, pricing.DeliveryPolicy) {
	policies := map[domain.Region]pricing.DeliveryPolicy{
		domain.RegionIndia: {
			Available: true,
			Cutoff:    c.IndiaDeliveryCutoff,
			Message:   c.IndiaDeliveryMessage,
		},
		domain.RegionCanada: {
			Available: true,
			Cutoff:    c.CanadaDeliveryCutoff,
			Message:   c.CanadaDeliveryMessage,
		},
	}
	fallback := pricing.DeliveryPolicy{Available: false, Message: c.FallbackDeliveryMsg}
	return policies, fallback
}
