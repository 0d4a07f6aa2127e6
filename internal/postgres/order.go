// Package postgres implements the domain store interfaces over PostgreSQL
// using pgx. Each store writes to a single aggregate's table; there are no
// cross-aggregate transactions, matching the store contracts in domain.
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

// OrderStore implements domain.OrderStore using PostgreSQL. Line items are
// stored as a JSONB document on the order row so the whole aggregate writes
// atomically in one statement.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `
	id, order_number,
	customer_name, customer_email, customer_phone, delivery_address, special_instructions,
	line_items,
	order_subtotal, shipping_cost, discount, order_total,
	order_status, payment_status,
	notification_sent, notification_sent_at, notification_template,
	created_at, updated_at`

// CreateOrder inserts the order. Returns domain.ErrOrderNumberTaken when the
// order number is already in use.
func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		pgUUID(order.ID),
		order.OrderNumber,
		order.Customer.Name,
		order.Customer.Email,
		pgText(order.Customer.Phone),
		order.Customer.DeliveryAddress,
		pgText(order.Customer.SpecialInstructions),
		order.LineItems,
		order.OrderSubtotal,
		order.ShippingCost,
		order.Discount,
		order.OrderTotal,
		order.OrderStatus.String(),
		order.PaymentStatus.String(),
		order.Notification.Sent,
		pgTimePtr(order.Notification.SentAt),
		pgText(string(order.Notification.Template)),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return domain.ErrOrderNumberTaken
		}
		return domain.Internal(err, "postgres.order.create", "failed to insert order")
	}
	return nil
}

// UpdateOrder replaces the mutable columns of the order row. The order number
// is deliberately absent from the SET list.
func (s *OrderStore) UpdateOrder(ctx context.Context, order *domain.Order) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET
			customer_name = $2,
			customer_email = $3,
			customer_phone = $4,
			delivery_address = $5,
			special_instructions = $6,
			line_items = $7,
			order_subtotal = $8,
			shipping_cost = $9,
			discount = $10,
			order_total = $11,
			order_status = $12,
			payment_status = $13,
			notification_sent = $14,
			notification_sent_at = $15,
			notification_template = $16,
			updated_at = $17
		WHERE id = $1`,
		pgUUID(order.ID),
		order.Customer.Name,
		order.Customer.Email,
		pgText(order.Customer.Phone),
		order.Customer.DeliveryAddress,
		pgText(order.Customer.SpecialInstructions),
		order.LineItems,
		order.OrderSubtotal,
		order.ShippingCost,
		order.Discount,
		order.OrderTotal,
		order.OrderStatus.String(),
		order.PaymentStatus.String(),
		order.Notification.Sent,
		pgTimePtr(order.Notification.SentAt),
		pgText(string(order.Notification.Template)),
		order.UpdatedAt,
	)
	if err != nil {
		return domain.Internal(err, "postgres.order.update", "failed to update order")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// GetOrder retrieves an order by ID.
func (s *OrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, pgUUID(id))
	return scanOrder(row)
}

// GetOrderByNumber retrieves an order by its order number.
func (s *OrderStore) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
	return scanOrder(row)
}

// MarkNotified records a successful notification enqueue on the order row.
func (s *OrderStore) MarkNotified(ctx context.Context, id uuid.UUID, template domain.NotificationTemplate, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET
			notification_sent = TRUE,
			notification_sent_at = $2,
			notification_template = $3,
			updated_at = $2
		WHERE id = $1`,
		pgUUID(id), at, string(template),
	)
	if err != nil {
		return domain.Internal(err, "postgres.order.mark_notified", "failed to record notification")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes the order row.
func (s *OrderStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, pgUUID(id))
	if err != nil {
		return domain.Internal(err, "postgres.order.delete", "failed to delete order")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order               domain.Order
		id                  pgtype.UUID
		phone               pgtype.Text
		specialInstructions pgtype.Text
		orderStatus         string
		paymentStatus       string
		sentAt              pgtype.Timestamptz
		template            pgtype.Text
	)

	err := row.Scan(
		&id,
		&order.OrderNumber,
		&order.Customer.Name,
		&order.Customer.Email,
		&phone,
		&order.Customer.DeliveryAddress,
		&specialInstructions,
		&order.LineItems,
		&order.OrderSubtotal,
		&order.ShippingCost,
		&order.Discount,
		&order.OrderTotal,
		&orderStatus,
		&paymentStatus,
		&order.Notification.Sent,
		&sentAt,
		&template,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "postgres.order.get", "failed to scan order")
	}

	order.ID = uuidFromPG(id)
	order.Customer.Phone = textFromPG(phone)
	order.Customer.SpecialInstructions = textFromPG(specialInstructions)
	order.OrderStatus = domain.OrderStatus(orderStatus)
	order.PaymentStatus = domain.PaymentStatus(paymentStatus)
	order.Notification.SentAt = timePtrFromPG(sentAt)
	order.Notification.Template = domain.NotificationTemplate(textFromPG(template))
	return &order, nil
}
