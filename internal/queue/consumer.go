package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/ticket-orders/internal/model"
)

// TicketApplier writes ticket snapshots into the local replica.  Apply
// reports whether the snapshot was taken; a false result with nil error
// means the event was stale or duplicated and was ignored.
type TicketApplier interface {
	Apply(ctx context.Context, t *model.Ticket) (bool, error)
}

// StartTicketConsumer connects to RabbitMQ, declares the ticket.events
// queue (durable) and consumes catalog events, applying each snapshot to
// the replica through the applier.  It runs a reconnect loop with
// exponential backoff and never returns under normal operation; poison
// messages are rejected without requeue so the consumer keeps moving.
func StartTicketConsumer(url string, applier TicketApplier) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeTickets(conn, applier); err != nil {
			log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeTickets(conn *amqp.Connection, applier TicketApplier) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(TicketEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(TicketEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleTicketMessage(context.Background(), applier, d.Body); err != nil {
			log.Printf("ticket-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleTicketMessage decodes one catalog event and applies its snapshot
// to the replica.  Stale and duplicated deliveries are acknowledged
// silently apart from a log line; only decode and storage failures are
// errors.
func handleTicketMessage(ctx context.Context, applier TicketApplier, body []byte) error {
	var ev TicketEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ID == "" {
		return errors.New("ticket event missing id")
	}
	applied, err := applier.Apply(ctx, &model.Ticket{
		ID:         ev.ID,
		Title:      ev.Title,
		PriceCents: ev.PriceCents,
		Version:    ev.Version,
	})
	if err != nil {
		return fmt.Errorf("apply ticket %s v%d: %w", ev.ID, ev.Version, err)
	}
	if !applied {
		log.Printf("ticket-consumer: ignored stale %s for ticket %s v%d", ev.EventType, ev.ID, ev.Version)
	}
	return nil
}
