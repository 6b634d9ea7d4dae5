// Package repository implements the persistence layer for tickets and
// orders on top of database/sql.  Every mutation follows the optimistic
// concurrency discipline: rows carry an integer version, creations write
// version 0 and updates are compare-and-swap on the version read by the
// caller.  Sentinel errors defined here let handlers map failure modes to
// distinct HTTP responses without inspecting SQL errors.
package repository

import "errors"

// ErrTicketNotFound is returned when a ticket id does not resolve to a
// row in the local replica.  Handlers translate this into 404.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrOrderNotFound is returned when an order id does not resolve, or
// when no active order exists for a ticket.  Handlers translate this
// into 404.
var ErrOrderNotFound = errors.New("order not found")

// ErrTicketReserved is returned when an order cannot be created because
// a blocking order already exists for the same ticket.  Handlers
// translate this into 400.
var ErrTicketReserved = errors.New("ticket already reserved")

// ErrVersionConflict is returned when a compare-and-swap update loses:
// the stored version no longer matches the version the caller read.  The
// caller must re-fetch and recompute, never blindly resubmit the same
// write.  Handlers translate this into 409.
var ErrVersionConflict = errors.New("version conflict")

// ErrForbidden is returned when the caller attempts an operation on an
// order owned by someone else.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")
