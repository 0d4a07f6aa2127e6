package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject notifications are published to when the
// configuration does not override it.
const DefaultSubject = "ordercore.notifications"

// NATSTransport publishes notification messages to a NATS subject. The
// delivery workers on the other side of the subject own their retry and
// timeout policy.
type NATSTransport struct {
	conn    *nats.Conn
	subject string
}

// NewNATSTransport creates a transport publishing to the given subject.
// An empty subject falls back to DefaultSubject.
func NewNATSTransport(conn *nats.Conn, subject string) *NATSTransport {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSTransport{conn: conn, subject: subject}
}

// Enqueue publishes the message as JSON. Publish is fire-and-forget at the
// NATS level; an error here means the message never left the process.
func (t *NATSTransport) Enqueue(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := t.conn.Publish(t.subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
