// Package domain provides the core order-management types, the application
// error taxonomy, and context helpers.
//
// Context helpers centralize request-scoped data access so that pipeline
// stages receive actor identity and request ID explicitly instead of reaching
// for ambient request state.
package domain

import (
	"context"
	"time"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// actorContextKey stores the acting identity in context.
	actorContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// Actor identifies who triggered an order mutation: an admin user, the
// storefront checkout, or an internal job. Recorded on every audit event.
type Actor struct {
	ID    string
	Email string
	Kind  string // "admin", "customer", "system"
}

// SystemActor is the actor recorded for mutations not attributable to a
// request, e.g. reconciliation replays.
var SystemActor = Actor{ID: "system", Kind: "system"}

// NewContextWithActor returns a new context with the actor attached.
func NewContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext retrieves the actor from context.
// Returns SystemActor if no actor is present.
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorContextKey).(Actor); ok {
		return actor
	}
	return SystemActor
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}

// Clock abstracts time for deterministic testing. Order timestamps and
// order-number dates always come from an injected Clock, never time.Now
// called inline.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
