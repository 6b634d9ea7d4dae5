package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-orders/internal/model"
	"github.com/iliyamo/ticket-orders/internal/repository"
)

// OrderHandler exposes the order lifecycle over HTTP.  JWT authentication
// has already run; the requesting user's id is read from the context and
// passed explicitly into the service.
type OrderHandler struct {
	svc Reservations
}

// Reservations is the surface the HTTP layer needs from the reservation
// core, implemented by service.ReservationService.  It is an interface
// so handler tests can substitute a stub.
type Reservations interface {
	Reserve(ctx context.Context, ticketID, userID string) (*model.Order, error)
	Transition(ctx context.Context, orderID string, next model.OrderStatus, version int64) (*model.Order, error)
	Cancel(ctx context.Context, orderID, userID string) (*model.Order, error)
	Get(ctx context.Context, orderID, userID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}

// NewOrderHandler constructs an OrderHandler.  The service must be
// non-nil.
func NewOrderHandler(svc Reservations) *OrderHandler {
	if svc == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{svc: svc}
}

// Create handles POST /v1/orders.  The body carries the ticket id; the
// user comes from the session.  Responses: 201 with the order, 404 when
// the ticket is unknown, 400 when the ticket is already reserved.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		TicketID string `json:"ticket_id"`
	}
	if err := c.Bind(&body); err != nil || body.TicketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_id is required"})
	}
	order, err := h.svc.Reserve(c.Request().Context(), body.TicketID, userID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// List handles GET /v1/orders and returns the caller's orders.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// Get handles GET /v1/orders/:id.  Only the owner can see an order.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	order, err := h.svc.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Cancel handles DELETE /v1/orders/:id.  Cancelling releases the ticket
// for new reservations; the cancelled order is returned so the caller
// sees the bumped version.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	order, err := h.svc.Cancel(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PUT /v1/orders/:id/status, the endpoint external
// collaborators (payment service, expiration watcher) use to drive
// transitions.  The body carries the target status and the order version
// the collaborator last observed; the CAS runs against that version, so
// a stale caller gets 409 and must re-fetch and reconsider.  version is
// a pointer because 0 is a valid observation and a missing field must be
// rejected, not defaulted.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status  string `json:"status"`
		Version *int64 `json:"version"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	next, ok := model.ParseOrderStatus(body.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if body.Version == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version is required"})
	}
	order, err := h.svc.Transition(c.Request().Context(), c.Param("id"), next, *body.Version)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// orderError maps service failures onto the response taxonomy: not-found
// 404, reserved 400, invalid transition or lost CAS 409, foreign order
// 403, anything else 500.
func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrTicketNotFound), errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrTicketReserved):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, repository.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
