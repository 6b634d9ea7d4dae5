package model

import "time"

// Ticket is the local replica of a sellable ticket owned by the catalog
// service.  This service never mutates ticket attributes on the request
// path; rows are written only by the ticket-event consumer, which uses
// Version as its deduplication and ordering token.
//
// Fields:
//  ID         – catalog-assigned identifier.
//  Title      – display title, never empty.
//  PriceCents – price in cents, never negative.
//  Version    – catalog version of this snapshot; strictly increasing.
//  UpdatedAt  – when the replica row was last written.
type Ticket struct {
	ID         string    `json:"id"`          // tickets.id
	Title      string    `json:"title"`       // tickets.title
	PriceCents uint32    `json:"price_cents"` // tickets.price_cents
	Version    int64     `json:"version"`     // tickets.version
	UpdatedAt  time.Time `json:"updated_at"`  // tickets.updated_at
}
