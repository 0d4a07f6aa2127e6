package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderStats is the per-customer aggregate maintained from order creations.
type OrderStats struct {
	TotalOrders    int64
	TotalSpent     int64
	FirstOrderDate *time.Time
	LastOrderDate  *time.Time
}

// Customer is the slice of the Customer aggregate this core touches, looked
// up by email. The customer subsystem owns the full record.
type Customer struct {
	ID         uuid.UUID
	Email      string
	Name       string
	OrderStats OrderStats
}

// ErrCustomerNotFound indicates no customer record matches the order's email.
// Order creation never fails because of a missing customer record.
var ErrCustomerNotFound = &Error{Code: ENOTFOUND, Message: "Customer not found"}

// CustomerStore is the consumed interface onto the Customer subsystem.
type CustomerStore interface {
	// GetCustomerByEmail retrieves a customer by email. Returns
	// ErrCustomerNotFound when no such customer exists.
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)

	// RecordOrder applies one order to the customer's aggregate statistics as
	// an atomic increment at the storage layer: totalOrders+1, totalSpent
	// +orderTotal, lastOrderDate set to orderedAt, firstOrderDate set only if
	// previously unset. Not idempotent against replays; callers guarantee
	// at-most-once invocation per order creation.
	RecordOrder(ctx context.Context, id uuid.UUID, orderTotal int64, orderedAt time.Time) error
}
