package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/roastersquare/ordercore/internal/domain"
)

// CustomerStatsAggregator folds completed order creations into the
// customer's aggregate statistics. It is intentionally not idempotent against
// replays; the pipeline guarantees at-most-once invocation per creation.
type CustomerStatsAggregator struct {
	customers domain.CustomerStore
	logger    zerolog.Logger
}

// NewCustomerStatsAggregator creates an aggregator over the given customer store.
func NewCustomerStatsAggregator(customers domain.CustomerStore, logger zerolog.Logger) *CustomerStatsAggregator {
	return &CustomerStatsAggregator{customers: customers, logger: logger}
}

// OnOrderCreated looks up the customer by the order's email and applies the
// order to their statistics. A missing customer record is logged and reported
// as domain.ErrCustomerNotFound; order creation never fails because of it.
func (a *CustomerStatsAggregator) OnOrderCreated(ctx context.Context, order *domain.Order) error {
	customer, err := a.customers.GetCustomerByEmail(ctx, order.Customer.Email)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			a.logger.Warn().
				Str("order_number", order.OrderNumber).
				Str("customer_email", order.Customer.Email).
				Msg("customer stats skipped: no customer record for email")
			return domain.ErrCustomerNotFound
		}
		return domain.Internal(err, "customer.stats", "failed to look up customer")
	}

	if err := a.customers.RecordOrder(ctx, customer.ID, order.OrderTotal, order.CreatedAt); err != nil {
		return domain.Internal(err, "customer.stats", "failed to update customer stats")
	}

	a.logger.Debug().
		Str("order_number", order.OrderNumber).
		Str("customer_email", order.Customer.Email).
		Int64("order_total", order.OrderTotal).
		Msg("customer stats updated")

	return nil
}
