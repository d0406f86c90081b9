package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// orderItemRecord is the JSONB shape of one snapshotted line. Amounts
// travel as strings so the decimal values round-trip exactly.
type orderItemRecord struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	SubscriptionType string `json:"subscription_type"`
	UnitPrice        string `json:"unit_price"`
	TotalPrice       string `json:"total_price"`
}

const orderColumns = `id, user_email, items, region, subtotal::text, tax::text, total::text,
	currency, order_status, payment_status, delivery_address, tracking_link, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	items, err := encodeItems(o.Items)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO orders (
			user_email, items, region, subtotal, tax, total, currency,
			order_status, payment_status, delivery_address, tracking_link
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10, $11)
		RETURNING ` + orderColumns

	row := r.pool.QueryRow(ctx, query,
		o.UserEmail, items, o.Region,
		o.Subtotal.String(), o.Tax.String(), o.Total.String(), o.Currency,
		o.OrderStatus, o.PaymentStatus, o.DeliveryAddress, o.TrackingLink,
	)
	return scanOrder(row)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *OrderRepository) ListByUserEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_email = LOWER($1)
		ORDER BY created_at DESC, id DESC`
	return r.queryOrders(ctx, query, email)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	return r.queryOrders(ctx, query)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET    order_status  = $2,
		       tracking_link = COALESCE($3, tracking_link),
		       updated_at    = NOW()
		WHERE  id = $1
		RETURNING ` + orderColumns

	return scanOrder(r.pool.QueryRow(ctx, query, id, status, trackingLink))
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func encodeItems(items []domain.OrderItem) ([]byte, error) {
	records := make([]orderItemRecord, len(items))
	for i, item := range items {
		records[i] = orderItemRecord{
			ProductID:        item.ProductID,
			Name:             item.Name,
			Quantity:         item.Quantity,
			SubscriptionType: string(item.SubscriptionType),
			UnitPrice:        item.UnitPrice.String(),
			TotalPrice:       item.TotalPrice.String(),
		}
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	return encoded, nil
}

func decodeItems(raw []byte) ([]domain.OrderItem, error) {
	var records []orderItemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}

	items := make([]domain.OrderItem, len(records))
	for i, rec := range records {
		unit, err := decimal.NewFromString(rec.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		total, err := decimal.NewFromString(rec.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("parse total price: %w", err)
		}
		items[i] = domain.OrderItem{
			ProductID:        rec.ProductID,
			Name:             rec.Name,
			Quantity:         rec.Quantity,
			SubscriptionType: domain.SubscriptionType(rec.SubscriptionType),
			UnitPrice:        unit,
			TotalPrice:       total,
		}
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                    domain.Order
		items                []byte
		subtotal, tax, total string
	)
	err := row.Scan(
		&o.ID, &o.UserEmail, &items, &o.Region, &subtotal, &tax, &total,
		&o.Currency, &o.OrderStatus, &o.PaymentStatus, &o.DeliveryAddress,
		&o.TrackingLink, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("parse subtotal: %w", err)
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("parse tax: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	return &o, nil
}
