package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastersquare/ordercore/internal/domain"
)

func testOrder() *domain.Order {
	return &domain.Order{
		OrderNumber: "RS-20250307-A1B2C",
		Customer: domain.CustomerInfo{
			Name:  "Maria Santos",
			Email: "maria@example.com",
			Phone: "+1-555-0100",
		},
		OrderTotal:  5500,
		OrderStatus: domain.OrderStatusPending,
	}
}

func TestDispatcher_OrderCreated_DefaultTemplate(t *testing.T) {
	transport := NewMockTransport()
	d := NewDispatcher(transport, zerolog.Nop())

	template, err := d.OrderCreated(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateOrderConfirmation, template)

	msgs := transport.Enqueued()
	require.Len(t, msgs, 1)
	assert.Equal(t, "RS-20250307-A1B2C", msgs[0].OrderNumber)
	assert.Equal(t, "maria@example.com", msgs[0].CustomerEmail)
	assert.Equal(t, domain.TemplateOrderConfirmation, msgs[0].Template)
	assert.Equal(t, "55.00", msgs[0].Payload["order_total"])
}

func TestDispatcher_OrderCreated_ExplicitTemplateWins(t *testing.T) {
	transport := NewMockTransport()
	d := NewDispatcher(transport, zerolog.Nop())

	order := testOrder()
	order.Notification.Template = domain.TemplateShippingNotification

	template, err := d.OrderCreated(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateShippingNotification, template)
}

func TestDispatcher_OrderCreated_TransportFailure(t *testing.T) {
	transport := NewMockTransport()
	transport.EnqueueFunc = func(ctx context.Context, msg Message) error {
		return errors.New("broker unavailable")
	}
	d := NewDispatcher(transport, zerolog.Nop())

	_, err := d.OrderCreated(context.Background(), testOrder())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnqueueFailed)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestDispatcher_StatusChanged_MappedTransitions(t *testing.T) {
	tests := []struct {
		to   domain.OrderStatus
		want domain.NotificationTemplate
	}{
		{domain.OrderStatusShipped, domain.TemplateShippingNotification},
		{domain.OrderStatusDelivered, domain.TemplateDeliveryConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.to.String(), func(t *testing.T) {
			transport := NewMockTransport()
			d := NewDispatcher(transport, zerolog.Nop())

			template, enqueued, err := d.StatusChanged(context.Background(), testOrder(), domain.OrderStatusProcessing, tt.to)
			require.NoError(t, err)
			assert.True(t, enqueued)
			assert.Equal(t, tt.want, template)
			assert.Len(t, transport.Enqueued(), 1)
		})
	}
}

func TestDispatcher_StatusChanged_UnmappedTransitionSendsNothing(t *testing.T) {
	transport := NewMockTransport()
	d := NewDispatcher(transport, zerolog.Nop())

	_, enqueued, err := d.StatusChanged(context.Background(), testOrder(), domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, enqueued)
	assert.Empty(t, transport.Enqueued())
}

func TestDispatcher_StatusChanged_ExplicitTemplateOnUnmappedTransition(t *testing.T) {
	transport := NewMockTransport()
	d := NewDispatcher(transport, zerolog.Nop())

	order := testOrder()
	order.Notification.Template = domain.TemplateOrderConfirmation

	template, enqueued, err := d.StatusChanged(context.Background(), order, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, enqueued)
	assert.Equal(t, domain.TemplateOrderConfirmation, template)
}

func TestDispatcher_StatusChanged_AlreadySentTemplateNotRepeated(t *testing.T) {
	transport := NewMockTransport()
	d := NewDispatcher(transport, zerolog.Nop())

	order := testOrder()
	order.Notification = domain.Notification{Sent: true, Template: domain.TemplateOrderConfirmation}

	_, enqueued, err := d.StatusChanged(context.Background(), order, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, enqueued)
	assert.Empty(t, transport.Enqueued())
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{250, "2.50"},
		{5500, "55.00"},
		{123456, "1234.56"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.cents))
	}
}
