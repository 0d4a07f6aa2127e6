// Package notification maps order lifecycle events to customer message
// templates and hands them to a delivery transport. Only the enqueue contract
// lives here; delivery, retries, and timeouts belong to the transport's
// owning system.
package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roastersquare/ordercore/internal/domain"
)

// Message is one enqueued customer notification. Payload carries the
// template variables the delivery side needs to render the message.
type Message struct {
	OrderNumber   string                      `json:"order_number"`
	CustomerName  string                      `json:"customer_name"`
	CustomerEmail string                      `json:"customer_email"`
	CustomerPhone string                      `json:"customer_phone,omitempty"`
	Template      domain.NotificationTemplate `json:"template"`
	Payload       map[string]string           `json:"payload,omitempty"`
}

// Transport accepts messages for later delivery.
type Transport interface {
	// Enqueue hands a message to the delivery queue. A nil return means
	// accepted, not delivered.
	Enqueue(ctx context.Context, msg Message) error
}

// templateForTransition is the fixed trigger table for status changes.
// Transitions absent from the table do not auto-select a template; spamming
// customers on every administrative status flip is worse than sending
// nothing, so the admin must set a template explicitly for those.
var templateForTransition = map[domain.OrderStatus]domain.NotificationTemplate{
	domain.OrderStatusShipped:   domain.TemplateShippingNotification,
	domain.OrderStatusDelivered: domain.TemplateDeliveryConfirmation,
}

// Dispatcher selects templates for order events and enqueues them.
type Dispatcher struct {
	transport Transport
	logger    zerolog.Logger
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(transport Transport, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, logger: logger}
}

// OrderCreated enqueues the order confirmation for a newly created order.
// An explicitly set template on the order takes precedence over the default.
// Returns the template enqueued, or ErrEnqueueFailed wrapping the transport
// error.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *domain.Order) (domain.NotificationTemplate, error) {
	template := domain.TemplateOrderConfirmation
	if order.Notification.Template != "" {
		template = order.Notification.Template
	}
	if err := d.enqueue(ctx, order, template); err != nil {
		return "", err
	}
	return template, nil
}

// StatusChanged enqueues the message for an order status transition, if any.
// shipped and delivered map to fixed templates; any other transition only
// enqueues when a template was explicitly set on the order and not yet sent.
// The bool reports whether a message was enqueued.
func (d *Dispatcher) StatusChanged(ctx context.Context, order *domain.Order, from, to domain.OrderStatus) (domain.NotificationTemplate, bool, error) {
	template, ok := templateForTransition[to]
	if !ok {
		if order.Notification.Template == "" || order.Notification.Sent {
			d.logger.Info().
				Str("order_number", order.OrderNumber).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("no notification template for transition; nothing enqueued")
			return "", false, nil
		}
		template = order.Notification.Template
	}

	if err := d.enqueue(ctx, order, template); err != nil {
		return "", false, err
	}
	return template, true, nil
}

func (d *Dispatcher) enqueue(ctx context.Context, order *domain.Order, template domain.NotificationTemplate) error {
	msg := Message{
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.Customer.Name,
		CustomerEmail: order.Customer.Email,
		CustomerPhone: order.Customer.Phone,
		Template:      template,
		Payload: map[string]string{
			"order_total":  formatAmount(order.OrderTotal),
			"order_status": order.OrderStatus.String(),
		},
	}

	if err := d.transport.Enqueue(ctx, msg); err != nil {
		return wrapEnqueueFailed(err, order.OrderNumber, template)
	}

	d.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("template", string(template)).
		Str("customer_email", order.Customer.Email).
		Msg("notification enqueued")

	return nil
}
