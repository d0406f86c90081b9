package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewSubscriptionRepository(pool *pgxpool.Pool, logger *slog.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool, logger: logger.With("component", "subscription_repo")}
}

const subscriptionColumns = `id, user_email, product_id, quantity, cadence, region,
	delivery_address, status, next_run_at, last_run_at, created_at, updated_at`

func (r *SubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (
			user_email, product_id, quantity, cadence, region,
			delivery_address, status, next_run_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + subscriptionColumns

	row := r.pool.QueryRow(ctx, query,
		s.UserEmail, s.ProductID, s.Quantity, s.Cadence, s.Region,
		s.DeliveryAddress, s.Status, s.NextRunAt,
	)
	return scanSubscription(row)
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id, userEmail string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE id = $1 AND user_email = LOWER($2)`
	return scanSubscription(r.pool.QueryRow(ctx, query, id, userEmail))
}

func (r *SubscriptionRepository) ListByUserEmail(ctx context.Context, email string) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_email = LOWER($1)
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepository) Cancel(ctx context.Context, id, userEmail string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subscriptions SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND user_email = LOWER($2) AND status <> 'cancelled'`,
		id, userEmail)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

// ClaimAndAdvance claims due active subscriptions and advances their
// next_run_at in one transaction, so a crash leaves no partial state.
// FOR UPDATE SKIP LOCKED prevents double-firing across replicas.
func (r *SubscriptionRepository) ClaimAndAdvance(ctx context.Context, limit int, next func(*domain.Subscription) time.Time) ([]*domain.Subscription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE next_run_at <= NOW() AND status = 'active'
		ORDER BY next_run_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim subscriptions: %w", err)
	}

	var claimed []*domain.Subscription
	for rows.Next() {
		s, scanErr := scanSubscription(rows)
		if scanErr != nil {
			rows.Close()
			err = scanErr
			return nil, err
		}
		claimed = append(claimed, s)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	for _, s := range claimed {
		if _, err = tx.Exec(ctx,
			`UPDATE subscriptions SET next_run_at = $2, last_run_at = NOW(), updated_at = NOW()
			 WHERE id = $1`,
			s.ID, next(s),
		); err != nil {
			return nil, fmt.Errorf("advance subscription %s: %w", s.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return claimed, nil
}

func (r *SubscriptionRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE subscriptions SET status = 'paused', updated_at = NOW() WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.UserEmail, &s.ProductID, &s.Quantity, &s.Cadence, &s.Region,
		&s.DeliveryAddress, &s.Status, &s.NextRunAt, &s.LastRunAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return &s, nil
}
