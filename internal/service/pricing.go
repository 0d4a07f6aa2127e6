package service

import "github.com/roastersquare/ordercore/internal/domain"

// Totals is the derived money breakdown for an order. LineSubtotals is
// index-aligned with the input line items.
type Totals struct {
	LineSubtotals []int64
	Subtotal      int64
	Total         int64
}

// ComputeTotals derives per-line subtotals, the order subtotal, and the order
// total from the current line items. It runs on every create and update so
// totals can never drift from line items; client-supplied totals are ignored.
//
// A line with a negative unit price or a non-positive quantity contributes 0.
// That is a defensive guard, not acceptance: such lines are rejected upstream
// by payload validation. The total is clamped to be non-negative.
func ComputeTotals(items []domain.LineItem, shippingCost, discount int64) Totals {
	t := Totals{LineSubtotals: make([]int64, len(items))}
	for i, item := range items {
		t.LineSubtotals[i] = lineSubtotal(item)
		t.Subtotal += t.LineSubtotals[i]
	}
	t.Total = t.Subtotal + shippingCost - discount
	if t.Total < 0 {
		t.Total = 0
	}
	return t
}

func lineSubtotal(item domain.LineItem) int64 {
	if item.UnitPrice < 0 || item.Quantity <= 0 {
		return 0
	}
	return item.UnitPrice * int64(item.Quantity)
}

// applyTotals writes the derived amounts back onto the order.
func applyTotals(order *domain.Order, t Totals) {
	for i := range order.LineItems {
		order.LineItems[i].Subtotal = t.LineSubtotals[i]
	}
	order.OrderSubtotal = t.Subtotal
	order.OrderTotal = t.Total
}
