package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ticket-orders/internal/model"
)

// OrderRepo provides persistence for orders.  All timestamps are stored
// in UTC.  Mutations never overwrite blindly: creation is guarded by the
// one-active-order-per-ticket check and updates are compare-and-swap on
// the version column.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderColumns is the select list shared by every read in this file.
const orderColumns = `id, ticket_id, user_id, status, expires_at, version, created_at, updated_at`

// blockingCond matches orders that prevent a new reservation of the same
// ticket: AWAITING_PAYMENT and COMPLETE always block, CREATED blocks
// while its expiry is still in the future.  The current time is a bind
// parameter so callers and tests control the clock.
const blockingCond = `(status IN ('AWAITING_PAYMENT', 'COMPLETE') OR (status = 'CREATED' AND expires_at > ?))`

func scanOrder(row *sql.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.TicketID, &o.UserID, &o.Status, &o.ExpiresAt, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists a brand-new order with version 0.  The insert is
// guarded: it only lands if no blocking order exists for the same ticket
// at that instant, which enforces the no-double-booking invariant inside
// the storage engine even when two requests race past the service's
// derived read.  MySQL has no partial unique indexes, so the guard is a
// serialized NOT EXISTS check in the insert statement itself.  Returns
// ErrTicketReserved when the guard rejects the row.  On success the
// record's version and timestamps are populated from the stored row.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order, now time.Time) error {
	const q = `INSERT INTO orders (id, ticket_id, user_id, status, expires_at, version)
SELECT ?, ?, ?, ?, ?, 0 FROM DUAL
WHERE NOT EXISTS (SELECT 1 FROM orders WHERE ticket_id = ? AND ` + blockingCond + `)`
	res, err := r.db.ExecContext(ctx, q,
		o.ID, o.TicketID, o.UserID, o.Status, o.ExpiresAt.UTC(),
		o.TicketID, now.UTC(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketReserved
	}
	// Query the row back so defaults (version, created_at, updated_at)
	// populated by the database land on the caller's record.
	stored, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

// Update persists a status change using compare-and-swap on the version
// the caller read.  On success the record is refreshed from the stored
// row, so its version reflects the bump.  Zero affected rows means the
// write lost: ErrVersionConflict when the order still exists with a
// different version, ErrOrderNotFound when it is gone.
func (r *OrderRepo) Update(ctx context.Context, o *model.Order) error {
	const q = `UPDATE orders SET status = ?, version = version + 1, updated_at = UTC_TIMESTAMP() WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, o.Status, o.ID, o.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, o.ID); err != nil {
			return err // ErrOrderNotFound or a database error
		}
		return ErrVersionConflict
	}
	stored, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

// GetByID fetches a single order.  Returns ErrOrderNotFound when the id
// does not resolve.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, q, id))
}

// FindActiveByTicket returns the blocking order for a ticket if one
// exists at the given instant, or ErrOrderNotFound when the ticket is
// free.  This is the derived reservability read: reservability is never
// a stored flag on the ticket.
func (r *OrderRepo) FindActiveByTicket(ctx context.Context, ticketID string, now time.Time) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE ticket_id = ? AND ` + blockingCond + ` LIMIT 1`
	return scanOrder(r.db.QueryRowContext(ctx, q, ticketID, now.UTC()))
}

// ListByUser returns all orders belonging to a user, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.TicketID, &o.UserID, &o.Status, &o.ExpiresAt, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
