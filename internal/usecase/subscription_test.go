package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/usecase"
)

type fakeSubscriptionRepo struct {
	create          func(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	getByID         func(ctx context.Context, id, userEmail string) (*domain.Subscription, error)
	listByUserEmail func(ctx context.Context, email string) ([]*domain.Subscription, error)
	cancel          func(ctx context.Context, id, userEmail string) error
	claimAndAdvance func(ctx context.Context, limit int, next func(*domain.Subscription) time.Time) ([]*domain.Subscription, error)
	deactivate      func(ctx context.Context, id string) error
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	return r.create(ctx, sub)
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, id, userEmail string) (*domain.Subscription, error) {
	return r.getByID(ctx, id, userEmail)
}

func (r *fakeSubscriptionRepo) ListByUserEmail(ctx context.Context, email string) ([]*domain.Subscription, error) {
	return r.listByUserEmail(ctx, email)
}

func (r *fakeSubscriptionRepo) Cancel(ctx context.Context, id, userEmail string) error {
	return r.cancel(ctx, id, userEmail)
}

func (r *fakeSubscriptionRepo) ClaimAndAdvance(ctx context.Context, limit int, next func(*domain.Subscription) time.Time) ([]*domain.Subscription, error) {
	return r.claimAndAdvance(ctx, limit, next)
}

func (r *fakeSubscriptionRepo) Deactivate(ctx context.Context, id string) error {
	return r.deactivate(ctx, id)
}

func validSubscriptionInput() usecase.CreateSubscriptionInput {
	return usecase.CreateSubscriptionInput{
		UserEmail:       "baker@example.com",
		ProductID:       "p1",
		Quantity:        1,
		Cadence:         "weekly",
		Region:          "India",
		DeliveryAddress: "42 Crust Lane, Mumbai",
	}
}

func TestNextCadenceRun_AlwaysInFuture(t *testing.T) {
	from := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

	for _, cadence := range []domain.SubscriptionType{domain.SubscriptionWeekly, domain.SubscriptionMonthly} {
		next, err := usecase.NextCadenceRun(cadence, from)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", cadence, err)
		}
		if !next.After(from) {
			t.Errorf("%s: next run %v not after %v", cadence, next, from)
		}
	}
}

func TestNextCadenceRun_WeeklyLandsOnSunday(t *testing.T) {
	from := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC) // a Wednesday

	next, err := usecase.NextCadenceRun(domain.SubscriptionWeekly, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Weekday() != time.Sunday {
		t.Errorf("weekly run lands on %v, want Sunday", next.Weekday())
	}
}

func TestNextCadenceRun_MonthlyLandsOnFirst(t *testing.T) {
	from := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

	next, err := usecase.NextCadenceRun(domain.SubscriptionMonthly, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Day() != 1 {
		t.Errorf("monthly run lands on day %d, want 1", next.Day())
	}
}

func TestNextCadenceRun_OneTimeRejected(t *testing.T) {
	if _, err := usecase.NextCadenceRun(domain.SubscriptionOneTime, time.Now()); !errors.Is(err, domain.ErrInvalidCadence) {
		t.Errorf("want ErrInvalidCadence, got %v", err)
	}
}

func TestCreateSubscription_Success(t *testing.T) {
	var captured *domain.Subscription
	subs := &fakeSubscriptionRepo{
		create: func(_ context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
			captured = sub
			created := *sub
			created.ID = "sub-1"
			return &created, nil
		},
	}
	eligible := *loaf
	eligible.SubscriptionEligible = true
	products := &fakeProductRepo{products: map[string]*domain.Product{"p1": &eligible}}

	sub, err := usecase.NewSubscriptionUsecase(subs, products).Create(context.Background(), validSubscriptionInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ID != "sub-1" {
		t.Errorf("ID = %q, want sub-1", sub.ID)
	}
	if captured.Status != domain.SubscriptionActive {
		t.Errorf("status = %s, want active", captured.Status)
	}
	if !captured.NextRunAt.After(time.Now()) {
		t.Errorf("next run %v is not in the future", captured.NextRunAt)
	}
}

func TestCreateSubscription_IneligibleProduct(t *testing.T) {
	products := &fakeProductRepo{products: map[string]*domain.Product{"p1": loaf}}

	_, err := usecase.NewSubscriptionUsecase(&fakeSubscriptionRepo{}, products).Create(context.Background(), validSubscriptionInput())
	if !errors.Is(err, domain.ErrNotSubscriptionEligible) {
		t.Errorf("want ErrNotSubscriptionEligible, got %v", err)
	}
}

func TestCreateSubscription_OneTimeCadenceRejected(t *testing.T) {
	in := validSubscriptionInput()
	in.Cadence = "one-time"

	_, err := usecase.NewSubscriptionUsecase(&fakeSubscriptionRepo{}, &fakeProductRepo{}).Create(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidCadence) {
		t.Errorf("want ErrInvalidCadence, got %v", err)
	}
}

func TestCreateSubscription_UnknownProduct(t *testing.T) {
	products := &fakeProductRepo{products: map[string]*domain.Product{}}

	_, err := usecase.NewSubscriptionUsecase(&fakeSubscriptionRepo{}, products).Create(context.Background(), validSubscriptionInput())
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("want ErrProductNotFound, got %v", err)
	}
}
