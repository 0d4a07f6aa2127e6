package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roastersquare/ordercore/internal/domain"
)

// CustomerStore implements domain.CustomerStore using PostgreSQL.
type CustomerStore struct {
	pool *pgxpool.Pool
}

var _ domain.CustomerStore = (*CustomerStore)(nil)

// NewCustomerStore creates a PostgreSQL-backed customer store.
func NewCustomerStore(pool *pgxpool.Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

// GetCustomerByEmail retrieves a customer by email address.
func (s *CustomerStore) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var (
		c     domain.Customer
		id    pgtype.UUID
		first pgtype.Timestamptz
		last  pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, total_orders, total_spent, first_order_date, last_order_date
		FROM customers
		WHERE email = $1`, email,
	).Scan(&id, &c.Email, &c.Name, &c.OrderStats.TotalOrders, &c.OrderStats.TotalSpent, &first, &last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, domain.Internal(err, "postgres.customer.get", "failed to get customer")
	}
	c.ID = uuidFromPG(id)
	c.OrderStats.FirstOrderDate = timePtrFromPG(first)
	c.OrderStats.LastOrderDate = timePtrFromPG(last)
	return &c, nil
}

// RecordOrder folds one order into the customer's statistics as a single
// in-database increment. The first order date is set only once.
func (s *CustomerStore) RecordOrder(ctx context.Context, id uuid.UUID, orderTotal int64, orderedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + $2,
		    last_order_date = $3,
		    first_order_date = COALESCE(first_order_date, $3)
		WHERE id = $1`,
		pgUUID(id), orderTotal, orderedAt,
	)
	if err != nil {
		return domain.Internal(err, "postgres.customer.record_order", "failed to update customer stats")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
