package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-orders/internal/model"
	"github.com/iliyamo/ticket-orders/internal/repository"
)

type stubTicketReader struct {
	tickets map[string]*model.Ticket
}

func (s *stubTicketReader) GetByID(_ context.Context, id string) (*model.Ticket, error) {
	if t, ok := s.tickets[id]; ok {
		return t, nil
	}
	return nil, repository.ErrTicketNotFound
}

func TestGetTicket(t *testing.T) {
	h := NewTicketHandler(&stubTicketReader{tickets: map[string]*model.Ticket{
		"t1": {ID: "t1", Title: "title", PriceCents: 100},
	}})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/tickets/t1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title"`)

	req = httptest.NewRequest(http.MethodGet, "/v1/tickets/missing", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
