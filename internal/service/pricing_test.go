package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roastersquare/ordercore/internal/domain"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []domain.LineItem
		shippingCost int64
		discount     int64
		wantLines    []int64
		wantSubtotal int64
		wantTotal    int64
	}{
		{
			name: "two lines with shipping and discount",
			items: []domain.LineItem{
				{ProductID: "prod-1", UnitPrice: 2500, Quantity: 2},
				{ProductID: "prod-2", UnitPrice: 10000, Quantity: 2},
			},
			shippingCost: 1200,
			discount:     700,
			wantLines:    []int64{5000, 20000},
			wantSubtotal: 25000,
			wantTotal:    25500,
		},
		{
			name: "single line no adjustments",
			items: []domain.LineItem{
				{ProductID: "prod-1", UnitPrice: 1850, Quantity: 3},
			},
			wantLines:    []int64{5550},
			wantSubtotal: 5550,
			wantTotal:    5550,
		},
		{
			name: "discount exceeding subtotal clamps to zero",
			items: []domain.LineItem{
				{ProductID: "prod-1", UnitPrice: 500, Quantity: 1},
			},
			discount:     2000,
			wantLines:    []int64{500},
			wantSubtotal: 500,
			wantTotal:    0,
		},
		{
			name: "negative unit price contributes nothing",
			items: []domain.LineItem{
				{ProductID: "prod-1", UnitPrice: -100, Quantity: 4},
				{ProductID: "prod-2", UnitPrice: 300, Quantity: 1},
			},
			wantLines:    []int64{0, 300},
			wantSubtotal: 300,
			wantTotal:    300,
		},
		{
			name: "zero quantity contributes nothing",
			items: []domain.LineItem{
				{ProductID: "prod-1", UnitPrice: 900, Quantity: 0},
			},
			wantLines:    []int64{0},
			wantSubtotal: 0,
			wantTotal:    0,
		},
		{
			name:         "no line items",
			items:        nil,
			shippingCost: 500,
			wantLines:    []int64{},
			wantSubtotal: 0,
			wantTotal:    500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.shippingCost, tt.discount)
			assert.Equal(t, tt.wantLines, got.LineSubtotals)
			assert.Equal(t, tt.wantSubtotal, got.Subtotal)
			assert.Equal(t, tt.wantTotal, got.Total)
		})
	}
}

func TestApplyTotals_OverwritesStoredAmounts(t *testing.T) {
	order := &domain.Order{
		LineItems: []domain.LineItem{
			{ProductID: "prod-1", UnitPrice: 2500, Quantity: 2, Subtotal: 1},
		},
		// A client-forged total; recomputation must replace it.
		OrderSubtotal: 999999,
		OrderTotal:    1,
		ShippingCost:  1000,
	}

	applyTotals(order, ComputeTotals(order.LineItems, order.ShippingCost, order.Discount))

	assert.Equal(t, int64(5000), order.LineItems[0].Subtotal)
	assert.Equal(t, int64(5000), order.OrderSubtotal)
	assert.Equal(t, int64(6000), order.OrderTotal)
}
