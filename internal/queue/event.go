// Package queue defines the domain events exchanged over the message
// broker and the publisher/consumer that move them.  Every event carries
// the entity's version at publish time; consumers use it as their
// deduplication and ordering token under at-least-once delivery.
package queue

// Queue names.  Both queues are durable; messages are persistent.
const (
	OrderEventsQueue  = "order.events"
	TicketEventsQueue = "ticket.events"
)

// Event types carried in the order.events envelope.
const (
	EventOrderCreated       = "order.created"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published on every order state change.  Downstream
// consumers (payments, availability projections, expiration watchers)
// that already applied version N must ignore a delivery carrying a
// version less than or equal to N.
type OrderEvent struct {
	EventType string `json:"event_type"`
	ID        string `json:"id"`
	Version   int64  `json:"version"`
	TicketID  string `json:"ticket_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"` // RFC 3339, UTC
}

// TicketEvent is consumed from the catalog service's ticket.events
// queue.  ticket.created and ticket.updated share this shape; both are
// applied as versioned snapshots to the local replica.
type TicketEvent struct {
	EventType  string `json:"event_type"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents uint32 `json:"price_cents"`
	Version    int64  `json:"version"`
}
