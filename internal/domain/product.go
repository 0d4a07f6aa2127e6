package domain

import "context"

// Product is the slice of the Product aggregate this core touches. The
// catalog subsystem owns the full record; this core only reads it and issues
// signed stock deltas and order-counter increments.
type Product struct {
	ID         string
	Name       string
	SKU        string
	Stock      int64
	OrderCount int64
}

// ErrProductNotFound indicates the referenced product aggregate is missing.
// Best-effort semantics: callers log and continue, they do not roll back the
// order write.
var ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

// ProductStore is the consumed interface onto the Product subsystem.
type ProductStore interface {
	// GetProduct retrieves a product by ID. Returns ErrProductNotFound when
	// no such product exists.
	GetProduct(ctx context.Context, id string) (*Product, error)

	// AdjustStock applies a signed stock delta and an order-counter delta as
	// a single atomic increment at the storage layer, and returns the
	// resulting stock level. The stock may go negative; callers decide
	// whether that warrants a warning. Returns ErrProductNotFound when no
	// such product exists.
	AdjustStock(ctx context.Context, id string, stockDelta int64, orderCountDelta int64) (newStock int64, err error)
}
