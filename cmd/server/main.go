package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-orders/internal/config"
	"github.com/iliyamo/ticket-orders/internal/database"
	"github.com/iliyamo/ticket-orders/internal/handler"
	"github.com/iliyamo/ticket-orders/internal/middleware"
	"github.com/iliyamo/ticket-orders/internal/queue"
	"github.com/iliyamo/ticket-orders/internal/repository"
	"github.com/iliyamo/ticket-orders/internal/router"
	"github.com/iliyamo/ticket-orders/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	ticketRepo := repository.NewTicketRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	brokerURL := queue.BrokerURL()
	publisher, err := queue.NewRabbitPublisher(brokerURL)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = publisher.Close() }()

	// Keep the local ticket replica in sync with the catalog service.
	go func() {
		if err := queue.StartTicketConsumer(brokerURL, ticketRepo); err != nil {
			log.Printf("ticket-consumer stopped: %v", err)
		}
	}()

	reservations := service.NewReservationService(ticketRepo, orderRepo, publisher, cfg.ReservationWindow)

	e := echo.New()
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), config.NewRedisClient())
	router.RegisterRoutes(e, handler.NewTicketHandler(ticketRepo))
	router.RegisterOrders(e, handler.NewOrderHandler(reservations), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
