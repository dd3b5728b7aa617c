// Package broadcast defines the port for pushing events to live consumers
// (dashboard websockets, message bus subscribers).
package broadcast

import "context"

// Broadcaster delivers a typed event to every connected consumer. Delivery
// is best effort; failures are logged by implementations, never returned to
// the mutating operation that produced the event.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
