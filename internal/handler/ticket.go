package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-orders/internal/model"
	"github.com/iliyamo/ticket-orders/internal/repository"
)

// TicketReader reads tickets from the local replica.
type TicketReader interface {
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
}

// TicketHandler exposes read-only access to the ticket replica.  The
// catalog service owns ticket mutation; this endpoint exists so clients
// can confirm what they are about to reserve.
type TicketHandler struct {
	tickets TicketReader
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(tickets TicketReader) *TicketHandler {
	if tickets == nil {
		panic("nil ticket reader passed to NewTicketHandler")
	}
	return &TicketHandler{tickets: tickets}
}

// Get handles GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	t, err := h.tickets.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, t)
}
