package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/roastersquare/ordercore/internal/domain"
)

// StockAdjustment is one signed stock delta against a product aggregate.
// Delta is negative when committing sold quantity, positive when reversing
// after a cancel/refund. CountDelta moves the product's order counter.
type StockAdjustment struct {
	ProductID  string
	Delta      int64
	CountDelta int64
}

// InventoryAdjuster applies stock deltas to the Product aggregate, one
// product at a time, reporting success or failure per adjustment. A missing
// product is logged and reported, never escalated: the order record is the
// source of truth for what was sold, and stock can be reconciled later from
// the audit log.
type InventoryAdjuster struct {
	products domain.ProductStore
	logger   zerolog.Logger
}

// NewInventoryAdjuster creates an InventoryAdjuster over the given product store.
func NewInventoryAdjuster(products domain.ProductStore, logger zerolog.Logger) *InventoryAdjuster {
	return &InventoryAdjuster{products: products, logger: logger}
}

// Apply performs one atomic stock adjustment. Returns ErrProductNotFound when
// the product aggregate is missing. Stock going negative is permitted but
// logged as a warning for reconciliation.
func (a *InventoryAdjuster) Apply(ctx context.Context, orderNumber string, adj StockAdjustment) error {
	newStock, err := a.products.AdjustStock(ctx, adj.ProductID, adj.Delta, adj.CountDelta)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			a.logger.Warn().
				Str("order_number", orderNumber).
				Str("product_id", adj.ProductID).
				Int64("delta", adj.Delta).
				Msg("inventory adjustment skipped: product not found")
			return domain.ErrProductNotFound
		}
		return domain.Internal(err, "inventory.adjust", "failed to adjust product stock")
	}

	if newStock < 0 {
		a.logger.Warn().
			Str("order_number", orderNumber).
			Str("product_id", adj.ProductID).
			Int64("delta", adj.Delta).
			Int64("stock", newStock).
			Msg("product stock is negative after adjustment")
	}

	a.logger.Debug().
		Str("order_number", orderNumber).
		Str("product_id", adj.ProductID).
		Int64("delta", adj.Delta).
		Int64("stock", newStock).
		Msg("inventory adjusted")

	return nil
}

// commitAdjustments builds the decrements for line items entering a committed
// state. Lines with non-positive quantity are excluded.
func commitAdjustments(items []domain.LineItem) []StockAdjustment {
	var adjs []StockAdjustment
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		adjs = append(adjs, StockAdjustment{
			ProductID:  item.ProductID,
			Delta:      -int64(item.Quantity),
			CountDelta: 1,
		})
	}
	return adjs
}

// reversalAdjustments builds the inverse adjustments for a previously
// committed order moving to cancelled/refunded. The order counter is left
// alone: the order happened, only the stock hold is released.
func reversalAdjustments(items []domain.LineItem) []StockAdjustment {
	var adjs []StockAdjustment
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		adjs = append(adjs, StockAdjustment{
			ProductID: item.ProductID,
			Delta:     int64(item.Quantity),
		})
	}
	return adjs
}

// deltaAdjustments diffs old vs new line items of an order that stays
// committed and returns the net stock movement per product. A quantity
// increase decrements stock further; a decrease restores it.
func deltaAdjustments(oldItems, newItems []domain.LineItem) []StockAdjustment {
	perProduct := make(map[string]int64)
	var order []string

	for _, item := range newItems {
		if item.Quantity <= 0 {
			continue
		}
		if _, seen := perProduct[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		perProduct[item.ProductID] -= int64(item.Quantity)
	}
	for _, item := range oldItems {
		if item.Quantity <= 0 {
			continue
		}
		if _, seen := perProduct[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		perProduct[item.ProductID] += int64(item.Quantity)
	}

	var adjs []StockAdjustment
	for _, id := range order {
		if delta := perProduct[id]; delta != 0 {
			adjs = append(adjs, StockAdjustment{ProductID: id, Delta: delta})
		}
	}
	return adjs
}
