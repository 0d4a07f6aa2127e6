package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastersquare/ordercore/internal/domain"
)

var allOrderStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusConfirmed,
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
	domain.OrderStatusCancelled,
	domain.OrderStatusRefunded,
}

var allPaymentStatuses = []domain.PaymentStatus{
	domain.PaymentStatusPending,
	domain.PaymentStatusPaid,
	domain.PaymentStatusPartiallyPaid,
	domain.PaymentStatusFailed,
	domain.PaymentStatusCancelled,
	domain.PaymentStatusRefunded,
}

func TestValidateOrderStatus_TransitionTable(t *testing.T) {
	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderStatusPending:    {domain.OrderStatusConfirmed, domain.OrderStatusProcessing, domain.OrderStatusCancelled},
		domain.OrderStatusConfirmed:  {domain.OrderStatusProcessing, domain.OrderStatusShipped, domain.OrderStatusCancelled},
		domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
		domain.OrderStatusShipped:    {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
		domain.OrderStatusDelivered:  {domain.OrderStatusRefunded},
		domain.OrderStatusCancelled:  {},
		domain.OrderStatusRefunded:   {},
	}

	// Exhaustive: every (from, to) pair is either in the table, a no-op, or
	// rejected.
	for _, from := range allOrderStatuses {
		for _, to := range allOrderStatuses {
			err := ValidateOrderStatus(from, to)

			if from == to {
				assert.NoError(t, err, "%s -> %s should be a no-op", from, to)
				continue
			}

			permitted := false
			for _, a := range allowed[from] {
				if a == to {
					permitted = true
				}
			}

			if permitted {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
			} else {
				assert.Error(t, err, "%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestValidateOrderStatus_TerminalStatesAreSinks(t *testing.T) {
	for _, from := range []domain.OrderStatus{domain.OrderStatusCancelled, domain.OrderStatusRefunded} {
		for _, to := range allOrderStatuses {
			if from == to {
				continue
			}
			assert.Error(t, ValidateOrderStatus(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestValidateOrderStatus_ErrorCarriesFromAndTo(t *testing.T) {
	err := ValidateOrderStatus(domain.OrderStatusPending, domain.OrderStatusDelivered)
	require.Error(t, err)

	var ite *InvalidTransitionError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, "order_status", ite.Field)
	assert.Equal(t, "pending", ite.From)
	assert.Equal(t, "delivered", ite.To)

	// The transport edge sees a client error, not an internal one.
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestValidatePaymentStatus_TransitionTable(t *testing.T) {
	allowed := map[domain.PaymentStatus][]domain.PaymentStatus{
		domain.PaymentStatusPending:       {domain.PaymentStatusPaid, domain.PaymentStatusPartiallyPaid, domain.PaymentStatusFailed, domain.PaymentStatusCancelled},
		domain.PaymentStatusPartiallyPaid: {domain.PaymentStatusPaid, domain.PaymentStatusFailed, domain.PaymentStatusRefunded},
		domain.PaymentStatusPaid:          {domain.PaymentStatusRefunded},
		domain.PaymentStatusFailed:        {domain.PaymentStatusPending},
		domain.PaymentStatusCancelled:     {},
		domain.PaymentStatusRefunded:      {},
	}

	for _, from := range allPaymentStatuses {
		for _, to := range allPaymentStatuses {
			err := ValidatePaymentStatus(from, to)

			if from == to {
				assert.NoError(t, err, "%s -> %s should be a no-op", from, to)
				continue
			}

			permitted := false
			for _, a := range allowed[from] {
				if a == to {
					permitted = true
				}
			}

			if permitted {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
			} else {
				assert.Error(t, err, "%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestTransitionHints_CancelPaidOrder(t *testing.T) {
	hints := TransitionHints(domain.PaymentStatusPaid, domain.OrderStatusProcessing, domain.OrderStatusCancelled)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "unreconciled")

	// No hint when payment never succeeded.
	assert.Empty(t, TransitionHints(domain.PaymentStatusPending, domain.OrderStatusProcessing, domain.OrderStatusCancelled))

	// No hint on ordinary transitions.
	assert.Empty(t, TransitionHints(domain.PaymentStatusPaid, domain.OrderStatusShipped, domain.OrderStatusDelivered))
}
