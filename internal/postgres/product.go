package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roastersquare/ordercore/internal/domain"
)

// ProductStore implements domain.ProductStore using PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

var _ domain.ProductStore = (*ProductStore)(nil)

// NewProductStore creates a PostgreSQL-backed product store.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// GetProduct retrieves a product by ID.
func (s *ProductStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, sku, stock, order_count
		FROM products
		WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.SKU, &p.Stock, &p.OrderCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "postgres.product.get", "failed to get product")
	}
	return &p, nil
}

// AdjustStock applies the deltas as a single in-database increment, so
// concurrent adjustments against the same product never lose updates.
func (s *ProductStore) AdjustStock(ctx context.Context, id string, stockDelta, orderCountDelta int64) (int64, error) {
	var newStock int64
	err := s.pool.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2,
		    order_count = order_count + $3
		WHERE id = $1
		RETURNING stock`,
		id, stockDelta, orderCountDelta,
	).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrProductNotFound
		}
		return 0, domain.Internal(err, "postgres.product.adjust_stock", "failed to adjust stock")
	}
	return newStock, nil
}
