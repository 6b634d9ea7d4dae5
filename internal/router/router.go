// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-orders/internal/handler"
	"github.com/iliyamo/ticket-orders/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and the public ticket read.
func RegisterRoutes(e *echo.Echo, t *handler.TicketHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/tickets/:id", t.Get)
}

// RegisterOrders registers the order lifecycle under /v1, protected by
// JWT authentication.  The limiter runs after auth so its buckets are
// keyed by user id rather than source IP.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		g.Use(limiter)
	}

	g.POST("/orders", o.Create)
	g.GET("/orders", o.List)
	g.GET("/orders/:id", o.Get)
	g.DELETE("/orders/:id", o.Cancel)
	// Collaborator-driven transitions: payment service and expiration
	// watcher move orders through the status table here.
	g.PUT("/orders/:id/status", o.UpdateStatus)
}
