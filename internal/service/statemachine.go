package service

import (
	"fmt"

	"github.com/roastersquare/ordercore/internal/domain"
)

// The order lifecycle is a closed state machine. Any transition not present
// in these tables is rejected; an unchanged status is a no-op, not an error.

// orderTransitions is the allowed-transition table for order status.
// cancelled and refunded are sinks.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusConfirmed, domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed:  {domain.OrderStatusProcessing, domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	domain.OrderStatusDelivered:  {domain.OrderStatusRefunded},
	domain.OrderStatusCancelled:  {},
	domain.OrderStatusRefunded:   {},
}

// paymentTransitions is the allowed-transition table for payment status.
// cancelled and refunded are sinks.
var paymentTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentStatusPending:       {domain.PaymentStatusPaid, domain.PaymentStatusPartiallyPaid, domain.PaymentStatusFailed, domain.PaymentStatusCancelled},
	domain.PaymentStatusPartiallyPaid: {domain.PaymentStatusPaid, domain.PaymentStatusFailed, domain.PaymentStatusRefunded},
	domain.PaymentStatusPaid:          {domain.PaymentStatusRefunded},
	domain.PaymentStatusFailed:        {domain.PaymentStatusPending},
	domain.PaymentStatusCancelled:     {},
	domain.PaymentStatusRefunded:      {},
}

// InvalidTransitionError reports a status change not permitted by the
// transition tables. Field is "order_status" or "payment_status".
type InvalidTransitionError struct {
	Field string
	From  string
	To    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Field, e.From, e.To)
}

// invalidTransition wraps the typed error into the domain taxonomy so the
// transport edge maps it to a client error. errors.As still reaches the
// InvalidTransitionError.
func invalidTransition(field, from, to string) error {
	return domain.WrapError(
		&InvalidTransitionError{Field: field, From: from, To: to},
		domain.EINVALID,
		"order.transition",
		fmt.Sprintf("Invalid %s transition from %q to %q", field, from, to),
	)
}

// ValidateOrderStatus checks an order-status change against the transition
// table. Returns nil when from == to (no-op validation).
func ValidateOrderStatus(from, to domain.OrderStatus) error {
	if from == to {
		return nil
	}
	allowed, ok := orderTransitions[from]
	if !ok {
		return invalidTransition("order_status", from.String(), to.String())
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return invalidTransition("order_status", from.String(), to.String())
}

// ValidatePaymentStatus checks a payment-status change against the transition
// table. Returns nil when from == to (no-op validation).
func ValidatePaymentStatus(from, to domain.PaymentStatus) error {
	if from == to {
		return nil
	}
	allowed, ok := paymentTransitions[from]
	if !ok {
		return invalidTransition("payment_status", from.String(), to.String())
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return invalidTransition("payment_status", from.String(), to.String())
}

// TransitionHints inspects a validated order-status change and returns
// warnings that should surface for manual review. The machine never acts on
// them: cancelling a paid order does not trigger a gateway reversal, it only
// flags the unreconciled payment.
func TransitionHints(paymentStatus domain.PaymentStatus, from, to domain.OrderStatus) []string {
	var hints []string
	if to == domain.OrderStatusCancelled && from != to && paymentStatus == domain.PaymentStatusPaid {
		hints = append(hints, "order cancelled with payment still marked paid; payment is unreconciled and needs manual review")
	}
	return hints
}
