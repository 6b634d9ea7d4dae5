// Package service holds the reservation decision engine and the order
// status transition validator.  The service owns no locks: reservability
// is a derived read over existing orders, every write goes through the
// repository's guarded insert or compare-and-swap update, and state
// changes are announced on the event queue so other services converge.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/ticket-orders/internal/model"
	"github.com/iliyamo/ticket-orders/internal/queue"
	"github.com/iliyamo/ticket-orders/internal/repository"
)

// TicketStore is the read side of the ticket replica.
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
}

// OrderStore is the versioned record store for orders.  Create persists
// a fresh record with version 0 and must reject it with ErrTicketReserved
// when a blocking order exists for the same ticket at that instant.
// Update is compare-and-swap on the record's version.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order, now time.Time) error
	Update(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	FindActiveByTicket(ctx context.Context, ticketID string, now time.Time) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}

// ReservationService decides whether a ticket can be reserved, creates
// the order representing the reservation and announces every state
// change.  The requesting user is always an explicit parameter, never
// read from ambient state.
type ReservationService struct {
	tickets   TicketStore
	orders    OrderStore
	publisher queue.Publisher
	window    time.Duration    // reservation window; finite and positive
	now       func() time.Time // injectable clock for tests
}

// NewReservationService wires the service.  window is how long a CREATED
// order holds its ticket before it stops blocking new reservations.
func NewReservationService(tickets TicketStore, orders OrderStore, publisher queue.Publisher, window time.Duration) *ReservationService {
	if tickets == nil || orders == nil || publisher == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if window <= 0 {
		panic("reservation window must be positive")
	}
	return &ReservationService{
		tickets:   tickets,
		orders:    orders,
		publisher: publisher,
		window:    window,
		now:       time.Now,
	}
}

// Reserve attempts to reserve a ticket for a user.  The decision is a
// derived read: the ticket is reservable when no blocking order
// references it.  Two racing calls can both pass that read, so the
// store's guarded insert is the authoritative check and may still return
// ErrTicketReserved.  On success exactly one order.created publish is
// attempted; a publish failure never rolls the order back.
func (s *ReservationService) Reserve(ctx context.Context, ticketID, userID string) (*model.Order, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if _, err := s.orders.FindActiveByTicket(ctx, ticket.ID, now); err == nil {
		return nil, repository.ErrTicketReserved
	} else if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	}

	order := &model.Order{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		UserID:    userID,
		Status:    model.StatusCreated,
		ExpiresAt: now.Add(s.window),
	}
	if err := s.orders.Create(ctx, order, now); err != nil {
		return nil, err
	}

	s.announce(ctx, queue.EventOrderCreated, order)
	return order, nil
}

// Transition validates and applies a status change driven by an external
// collaborator (payment service, expiration watcher).  version is the
// order version the caller last observed, and the compare-and-swap runs
// against it: ErrVersionConflict means the caller's view is stale and it
// must re-fetch and reconsider rather than retry the same transition.
// An expiration watcher holding a CREATED snapshot must not cancel an
// order the payment service has since moved on.
func (s *ReservationService) Transition(ctx context.Context, orderID string, next model.OrderStatus, version int64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Version != version {
		return nil, repository.ErrVersionConflict
	}
	if err := order.Transition(next); err != nil {
		return nil, err
	}
	// order.Version still equals the caller-observed version, so the CAS
	// also catches a writer that slips in after the read above.
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	eventType := queue.EventOrderStatusChanged
	if next == model.StatusCancelled {
		eventType = queue.EventOrderCancelled
	}
	s.announce(ctx, eventType, order)
	return order, nil
}

// Cancel releases a user's own reservation.  Only the owner may cancel
// through this path; the expiration watcher and payment service use
// Transition directly.  The version observed by the read here feeds the
// CAS, so a cancel racing another transition surfaces ErrVersionConflict.
func (s *ReservationService) Cancel(ctx context.Context, orderID, userID string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return s.Transition(ctx, orderID, model.StatusCancelled, order.Version)
}

// Get returns a single order, restricted to its owner.
func (s *ReservationService) Get(ctx context.Context, orderID, userID string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return order, nil
}

// ListByUser returns all orders belonging to a user.
func (s *ReservationService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// announce publishes one event for a committed state change.  The write
// already stands, so a publish failure is logged with the full payload
// for the at-least-once redelivery layer instead of failing the request.
func (s *ReservationService) announce(ctx context.Context, eventType string, o *model.Order) {
	ev := queue.OrderEvent{
		ID:        o.ID,
		Version:   o.Version,
		TicketID:  o.TicketID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		ExpiresAt: o.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, eventType, ev); err != nil {
		log.Printf("reservation: publish %s for order %s v%d failed, needs redelivery: %v",
			eventType, o.ID, o.Version, err)
	}
}
