package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// base_price travels as text so the exact decimal survives the wire.
const productColumns = `id, name, description, category, base_price::text,
	subscription_eligible, in_stock, ingredients, image_url, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (
			name, description, category, base_price,
			subscription_eligible, in_stock, ingredients, image_url
		) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Category, p.BasePrice.String(),
		p.SubscriptionEligible, p.InStock, p.Ingredients, p.ImageURL,
	)
	return scanProduct(row)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	products := make(map[string]*domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	args := []any{}
	where := []string{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET    name = $2, description = $3, category = $4, base_price = $5::numeric,
		       subscription_eligible = $6, in_stock = $7, ingredients = $8,
		       image_url = $9, updated_at = NOW()
		WHERE  id = $1
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Category, p.BasePrice.String(),
		p.SubscriptionEligible, p.InStock, p.Ingredients, p.ImageURL,
	)
	return scanProduct(row)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p         domain.Product
		basePrice string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &basePrice,
		&p.SubscriptionEligible, &p.InStock, &p.Ingredients, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	p.BasePrice, err = decimal.NewFromString(basePrice)
	if err != nil {
		return nil, fmt.Errorf("parse base price: %w", err)
	}
	return &p, nil
}
