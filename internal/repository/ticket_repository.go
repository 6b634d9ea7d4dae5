package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ticket-orders/internal/model"
)

// TicketRepo maintains the local replica of catalog tickets.  Reads come
// from the reservation path; writes come only from the ticket-event
// consumer, which may deliver events duplicated or out of order.  The
// version column is the dedup token: a snapshot is applied only when its
// version is greater than the stored one.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// GetByID fetches a ticket from the replica.  Returns ErrTicketNotFound
// when the id does not resolve.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	const q = `SELECT id, title, price_cents, version, updated_at FROM tickets WHERE id = ?`
	var t model.Ticket
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Title, &t.PriceCents, &t.Version, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Apply writes a ticket snapshot into the replica.  An existing row is
// overwritten only when the snapshot's version is strictly greater than
// the stored version; an unknown ticket is inserted.  Returns whether
// the snapshot was applied, so the consumer can log ignored duplicates.
func (r *TicketRepo) Apply(ctx context.Context, t *model.Ticket) (bool, error) {
	const upd = `UPDATE tickets SET title = ?, price_cents = ?, version = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND version < ?`
	res, err := r.db.ExecContext(ctx, upd, t.Title, t.PriceCents, t.Version, t.ID, t.Version)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Either the row does not exist yet or the snapshot is stale.  The
	// IGNORE keeps a concurrent insert of the same id from failing the
	// consumer.
	const ins = `INSERT IGNORE INTO tickets (id, title, price_cents, version) VALUES (?, ?, ?, ?)`
	res, err = r.db.ExecContext(ctx, ins, t.ID, t.Title, t.PriceCents, t.Version)
	if err != nil {
		return false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Losing the insert is not proof of staleness: another consumer may
	// have just inserted an older snapshot.  Retry the guarded update
	// once; only if it also misses is this snapshot genuinely stale.
	res, err = r.db.ExecContext(ctx, upd, t.Title, t.PriceCents, t.Version, t.ID, t.Version)
	if err != nil {
		return false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
