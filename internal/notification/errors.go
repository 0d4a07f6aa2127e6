package notification

import (
	"errors"
	"fmt"

	"github.com/roastersquare/ordercore/internal/domain"
)

// ErrEnqueueFailed is the sentinel for transport enqueue failures. Enqueue
// failures are logged by the pipeline and never block the order write.
var ErrEnqueueFailed = errors.New("notification enqueue failed")

// wrapEnqueueFailed wraps a transport error so that both errors.Is(err,
// ErrEnqueueFailed) and the domain error code hold.
func wrapEnqueueFailed(err error, orderNumber string, template domain.NotificationTemplate) error {
	return &domain.Error{
		Code:    domain.EINTERNAL,
		Op:      "notification.enqueue",
		Message: fmt.Sprintf("failed to enqueue %s for order %s", template, orderNumber),
		Err:     fmt.Errorf("%w: %w", ErrEnqueueFailed, err),
	}
}

// formatAmount renders a minor-unit amount as a decimal string, e.g. 25000 ->
// "250.00".
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
