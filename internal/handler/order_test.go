package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-orders/internal/model"
	"github.com/iliyamo/ticket-orders/internal/repository"
)

// stubReservations scripts the service layer so handler tests exercise
// only binding, identity and error translation.
type stubReservations struct {
	reserve    func(ticketID, userID string) (*model.Order, error)
	transition func(orderID string, next model.OrderStatus, version int64) (*model.Order, error)
	cancel     func(orderID, userID string) (*model.Order, error)
	get        func(orderID, userID string) (*model.Order, error)
	list       func(userID string) ([]model.Order, error)
}

func (s *stubReservations) Reserve(_ context.Context, ticketID, userID string) (*model.Order, error) {
	return s.reserve(ticketID, userID)
}
func (s *stubReservations) Transition(_ context.Context, orderID string, next model.OrderStatus, version int64) (*model.Order, error) {
	return s.transition(orderID, next, version)
}
func (s *stubReservations) Cancel(_ context.Context, orderID, userID string) (*model.Order, error) {
	return s.cancel(orderID, userID)
}
func (s *stubReservations) Get(_ context.Context, orderID, userID string) (*model.Order, error) {
	return s.get(orderID, userID)
}
func (s *stubReservations) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	return s.list(userID)
}

func newOrderContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	return c, rec
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:        "o1",
		TicketID:  "t1",
		UserID:    "u1",
		Status:    model.StatusCreated,
		ExpiresAt: time.Now().UTC().Add(15 * time.Minute),
	}
}

func TestCreateOrder(t *testing.T) {
	svc := &stubReservations{reserve: func(ticketID, userID string) (*model.Order, error) {
		assert.Equal(t, "t1", ticketID)
		assert.Equal(t, "u1", userID)
		return sampleOrder(), nil
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodPost, "/v1/orders", `{"ticket_id":"t1"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.StatusCreated, got.Status)
	assert.Equal(t, int64(0), got.Version)
}

func TestCreateOrderUnknownTicket(t *testing.T) {
	svc := &stubReservations{reserve: func(string, string) (*model.Order, error) {
		return nil, repository.ErrTicketNotFound
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodPost, "/v1/orders", `{"ticket_id":"missing"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderTicketReserved(t *testing.T) {
	svc := &stubReservations{reserve: func(string, string) (*model.Order, error) {
		return nil, repository.ErrTicketReserved
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodPost, "/v1/orders", `{"ticket_id":"t1"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderMissingBody(t *testing.T) {
	h := NewOrderHandler(&stubReservations{})

	c, rec := newOrderContext(http.MethodPost, "/v1/orders", `{}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderNoIdentity(t *testing.T) {
	h := NewOrderHandler(&stubReservations{})

	c, rec := newOrderContext(http.MethodPost, "/v1/orders", `{"ticket_id":"t1"}`)
	c.Set("user_id", nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrderForeign(t *testing.T) {
	svc := &stubReservations{get: func(string, string) (*model.Order, error) {
		return nil, repository.ErrForbidden
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodGet, "/v1/orders/o1", "")
	c.SetParamNames("id")
	c.SetParamValues("o1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	svc := &stubReservations{cancel: func(orderID, userID string) (*model.Order, error) {
		o := sampleOrder()
		o.Status = model.StatusCancelled
		o.Version = 1
		return o, nil
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodDelete, "/v1/orders/o1", "")
	c.SetParamNames("id")
	c.SetParamValues("o1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Equal(t, int64(1), got.Version)
}

func TestUpdateStatus(t *testing.T) {
	svc := &stubReservations{transition: func(orderID string, next model.OrderStatus, version int64) (*model.Order, error) {
		assert.Equal(t, model.StatusAwaitingPayment, next)
		// The caller-observed version reaches the service intact.
		assert.Equal(t, int64(0), version)
		o := sampleOrder()
		o.Status = next
		o.Version = 1
		return o, nil
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodPut, "/v1/orders/o1/status", `{"status":"AWAITING_PAYMENT","version":0}`)
	c.SetParamNames("id")
	c.SetParamValues("o1")
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatusMissingVersion(t *testing.T) {
	h := NewOrderHandler(&stubReservations{})

	c, rec := newOrderContext(http.MethodPut, "/v1/orders/o1/status", `{"status":"AWAITING_PAYMENT"}`)
	c.SetParamNames("id")
	c.SetParamValues("o1")
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusRejections(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid transition", model.ErrInvalidTransition, http.StatusConflict},
		{"stale version", repository.ErrVersionConflict, http.StatusConflict},
		{"unknown order", repository.ErrOrderNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubReservations{transition: func(string, model.OrderStatus, int64) (*model.Order, error) {
				return nil, tc.err
			}}
			h := NewOrderHandler(svc)

			c, rec := newOrderContext(http.MethodPut, "/v1/orders/o1/status", `{"status":"COMPLETE","version":1}`)
			c.SetParamNames("id")
			c.SetParamValues("o1")
			require.NoError(t, h.UpdateStatus(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	h := NewOrderHandler(&stubReservations{})

	c, rec := newOrderContext(http.MethodPut, "/v1/orders/o1/status", `{"status":"SHIPPED"}`)
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders(t *testing.T) {
	svc := &stubReservations{list: func(userID string) ([]model.Order, error) {
		assert.Equal(t, "u1", userID)
		return []model.Order{*sampleOrder()}, nil
	}}
	h := NewOrderHandler(svc)

	c, rec := newOrderContext(http.MethodGet, "/v1/orders", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].ID)
}
