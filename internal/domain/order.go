package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// Committed reports whether inventory is held for an order in this status,
// i.e. the order has not been cancelled or refunded.
func (s OrderStatus) Committed() bool {
	return s.Valid() && !s.Terminal()
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially-paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusCancelled     PaymentStatus = "cancelled"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// String returns the string representation of the status.
func (s PaymentStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartiallyPaid,
		PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// NotificationTemplate identifies an outbound customer message template.
type NotificationTemplate string

const (
	TemplateOrderConfirmation    NotificationTemplate = "order-confirmation"
	TemplateShippingNotification NotificationTemplate = "shipping-notification"
	TemplateDeliveryConfirmation NotificationTemplate = "delivery-confirmation"
)

// Valid reports whether t is a known template.
func (t NotificationTemplate) Valid() bool {
	switch t {
	case TemplateOrderConfirmation, TemplateShippingNotification, TemplateDeliveryConfirmation:
		return true
	}
	return false
}

// LineItem is one ordered product on an order. ProductName and SKU are
// snapshots taken at order time; the product record may change afterwards.
// Subtotal is derived from UnitPrice and Quantity, never client-supplied.
type LineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

// CustomerInfo is the customer contact block embedded on an order.
// Email doubles as the weak reference to the Customer aggregate.
type CustomerInfo struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	DeliveryAddress     string `json:"delivery_address"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// Notification records the delivery state of the customer message
// associated with this order.
type Notification struct {
	Sent     bool                 `json:"sent"`
	SentAt   *time.Time           `json:"sent_at,omitempty"`
	Template NotificationTemplate `json:"template,omitempty"`
}

// Order is the aggregate root. It exclusively owns its line items and holds
// weak references (by id/email) to the Product and Customer aggregates; those
// may be absent and the order must tolerate it.
//
// All monetary amounts are in minor currency units (cents).
type Order struct {
	ID          uuid.UUID    `json:"id"`
	OrderNumber string       `json:"order_number"` // immutable once assigned, globally unique
	Customer    CustomerInfo `json:"customer"`
	LineItems   []LineItem   `json:"line_items"`

	OrderSubtotal int64 `json:"order_subtotal"`
	ShippingCost  int64 `json:"shipping_cost"`
	Discount      int64 `json:"discount"`
	OrderTotal    int64 `json:"order_total"` // always recomputed: max(0, subtotal + shipping - discount)

	OrderStatus   OrderStatus   `json:"order_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notification  Notification  `json:"notification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order-related domain errors.
var (
	ErrOrderNotFound    = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrOrderNumberTaken = &Error{Code: ECONFLICT, Message: "Order number already in use"}
	ErrEmptyOrder       = &Error{Code: EINVALID, Message: "Order has no line items"}
)

// OrderStore persists Order aggregates. A write is atomic for the single
// order record only; no cross-aggregate transaction exists.
type OrderStore interface {
	// CreateOrder inserts a new order. Returns ErrOrderNumberTaken when the
	// order number collides with an existing order.
	CreateOrder(ctx context.Context, order *Order) error

	// UpdateOrder replaces the stored record. OrderNumber is never updated.
	UpdateOrder(ctx context.Context, order *Order) error

	// GetOrder retrieves an order by ID.
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetOrderByNumber retrieves an order by its human-readable number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// MarkNotified records a successful notification enqueue on the order.
	MarkNotified(ctx context.Context, id uuid.UUID, template NotificationTemplate, at time.Time) error

	// DeleteOrder removes an order. Administrative escape hatch only; callers
	// own the warning log and the reconciliation of side effects.
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}
