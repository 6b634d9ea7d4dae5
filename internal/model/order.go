package model

import (
	"errors"
	"time"
)

// OrderStatus enumerates the states an order moves through.  The zero
// value is not a valid status; orders are always created as CREATED.
type OrderStatus string

const (
	StatusCreated         OrderStatus = "CREATED"          // reservation made, unpaid, subject to expiry
	StatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT" // payment flow started by the payment service
	StatusComplete        OrderStatus = "COMPLETE"         // payment confirmed, reservation permanent
	StatusCancelled       OrderStatus = "CANCELLED"        // released: expired, payment failed or user cancelled
)

// ErrInvalidTransition is returned when an order is asked to move to a
// status the transition table does not allow, including any move out of
// a terminal status.
var ErrInvalidTransition = errors.New("invalid order status transition")

// transitions is the closed table of allowed status changes.  COMPLETE
// and CANCELLED are terminal and therefore absent as keys.
var transitions = map[OrderStatus][]OrderStatus{
	StatusCreated:         {StatusAwaitingPayment, StatusCancelled},
	StatusAwaitingPayment: {StatusComplete, StatusCancelled},
}

// ParseOrderStatus converts a wire string into an OrderStatus.  Unknown
// values return false so handlers can reject bad input before touching
// the transition table.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusCreated, StatusAwaitingPayment, StatusComplete, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether the table allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Order records one reservation attempt for a ticket.  It references the
// ticket by id only; ticket attributes are re-fetched from the local
// replica when needed.  Version follows the compare-and-swap discipline:
// it starts at 0 and is bumped by exactly one on every persisted update.
type Order struct {
	ID        string      `json:"id"`         // orders.id (uuid)
	TicketID  string      `json:"ticket_id"`  // orders.ticket_id
	UserID    string      `json:"user_id"`    // orders.user_id
	Status    OrderStatus `json:"status"`     // orders.status
	ExpiresAt time.Time   `json:"expires_at"` // orders.expires_at (UTC)
	Version   int64       `json:"version"`    // orders.version
	CreatedAt time.Time   `json:"created_at"` // orders.created_at
	UpdatedAt time.Time   `json:"updated_at"` // orders.updated_at
}

// Blocking reports whether this order prevents a new reservation of the
// same ticket at the given instant.  AWAITING_PAYMENT and COMPLETE always
// block; CREATED blocks only while its expiry is strictly in the future.
// CANCELLED never blocks.
func (o *Order) Blocking(now time.Time) bool {
	switch o.Status {
	case StatusAwaitingPayment, StatusComplete:
		return true
	case StatusCreated:
		return o.ExpiresAt.After(now)
	}
	return false
}

// Transition mutates the order's status after validating the move against
// the transition table.  The version is left untouched; the repository
// bumps it when the change is persisted.
func (o *Order) Transition(next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	return nil
}
