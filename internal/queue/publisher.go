package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/space-reservation/internal/reservation"
)

// Publisher implements reservation.Notifier by publishing a persistent
// ReservationCreatedEvent to a durable queue.  It dials per publish, so a
// broker outage costs one failed notification and nothing else.
type Publisher struct {
	URL   string
	Queue string
}

// NewPublisher returns a Publisher for url.  An empty queue name selects
// DefaultQueue.
func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{URL: url, Queue: queue}
}

// Notify publishes n.  Errors are returned to the caller, which logs them.
func (p *Publisher) Notify(ctx context.Context, n reservation.Notification) error {
	body, err := json.Marshal(EventFromNotification(n))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: dialer(ctx)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    fmt.Sprintf("reservation-%d", n.ReservationID),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// dialer bounds the TCP connect by ctx's deadline.
func dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			// the handshake must finish in time; the library clears the deadline afterwards
			_ = conn.SetDeadline(deadline)
		}
		return conn, nil
	}
}
