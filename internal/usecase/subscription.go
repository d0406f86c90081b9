package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/robfig/cron/v3"
)

// cadenceSchedules maps a subscription cadence to a cron descriptor.
// Weekly boxes ship with the Sunday batch, monthly with the
// first-of-month batch.
var cadenceSchedules = map[domain.SubscriptionType]string{
	domain.SubscriptionWeekly:  "@weekly",
	domain.SubscriptionMonthly: "@monthly",
}

// NextCadenceRun returns the first run strictly after from for the
// given cadence.
func NextCadenceRun(cadence domain.SubscriptionType, from time.Time) (time.Time, error) {
	expr, ok := cadenceSchedules[cadence]
	if !ok {
		return time.Time{}, domain.ErrInvalidCadence
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cadence schedule: %w", err)
	}
	return sched.Next(from), nil
}

type SubscriptionUsecase struct {
	subs     repository.SubscriptionRepository
	products repository.ProductRepository
}

func NewSubscriptionUsecase(subs repository.SubscriptionRepository, products repository.ProductRepository) *SubscriptionUsecase {
	return &SubscriptionUsecase{subs: subs, products: products}
}

type CreateSubscriptionInput struct {
	UserEmail       string
	ProductID       string
	Quantity        int
	Cadence         string
	Region          string
	DeliveryAddress string
}

func (u *SubscriptionUsecase) Create(ctx context.Context, in CreateSubscriptionInput) (*domain.Subscription, error) {
	cadence := domain.SubscriptionType(in.Cadence)
	if cadence != domain.SubscriptionWeekly && cadence != domain.SubscriptionMonthly {
		return nil, domain.ErrInvalidCadence
	}
	region, err := domain.ParseRegion(in.Region)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.DeliveryAddress == "" {
		return nil, domain.ErrMissingDeliveryAddress
	}

	product, err := u.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.SubscriptionEligible {
		return nil, domain.ErrNotSubscriptionEligible
	}

	nextRun, err := NextCadenceRun(cadence, time.Now())
	if err != nil {
		return nil, err
	}

	created, err := u.subs.Create(ctx, &domain.Subscription{
		UserEmail:       in.UserEmail,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		Cadence:         cadence,
		Region:          region,
		DeliveryAddress: in.DeliveryAddress,
		Status:          domain.SubscriptionActive,
		NextRunAt:       nextRun,
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return created, nil
}

func (u *SubscriptionUsecase) List(ctx context.Context, userEmail string) ([]*domain.Subscription, error) {
	return u.subs.ListByUserEmail(ctx, userEmail)
}

func (u *SubscriptionUsecase) Cancel(ctx context.Context, id, userEmail string) error {
	return u.subs.Cancel(ctx, id, userEmail)
}
