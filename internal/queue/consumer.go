package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Sink delivers one event somewhere.
type Sink interface {
	Deliver(ctx context.Context, ev ReservationCreatedEvent) error
}

// FileSink appends every event to a log file as one line.
type FileSink struct {
	Path string
	mu   sync.Mutex
}

func (s *FileSink) Deliver(_ context.Context, ev ReservationCreatedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(ev.LogLine()); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// SlackSink posts events to a Slack incoming webhook.
type SlackSink struct {
	WebhookURL string
	Client     *http.Client
}

func (s *SlackSink) Deliver(ctx context.Context, ev ReservationCreatedEvent) error {
	body, err := json.Marshal(map[string]string{"text": ev.SlackText()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack webhook: status %d", resp.StatusCode)
	}
	return nil
}

// Consumer reads ReservationCreatedEvent messages from a durable queue and
// hands each to its sinks.
type Consumer struct {
	URL            string
	Queue          string
	Sinks          []Sink
	ReconnectDelay time.Duration
	SinkTimeout    time.Duration
	// RetryDelay is how long a message whose sinks failed is held before it
	// goes back on the queue.
	RetryDelay     time.Duration
}

// errBadPayload marks a message body that is not a ReservationCreatedEvent.
var errBadPayload = errors.New("bad payload")

// acknowledger is the part of amqp.Delivery the consumer settles with.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Run connects, consumes and reconnects until ctx is cancelled.  It only
// returns ctx's error.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("notifier: failed to dial broker: %v; retrying in %s", err, backoff)
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("notifier: consume loop ended: %v; reconnecting", err)
		if err := sleep(ctx, c.reconnectDelay()); err != nil {
			return err
		}
	}
}

func (c *Consumer) reconnectDelay() time.Duration {
	if c.ReconnectDelay > 0 {
		return c.ReconnectDelay
	}
	return 2 * time.Second
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("notifier: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		c.settle(ctx, d, d.Body)
	}
	return errors.New("deliveries channel closed")
}

// settle handles one delivery and acks it.  A body that does not decode is
// dropped, since redelivering it would fail the same way.  A sink failure
// requeues the message after RetryDelay; sinks that already succeeded see
// it again.
func (c *Consumer) settle(ctx context.Context, d acknowledger, body []byte) {
	err := c.Handle(ctx, body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errBadPayload):
		log.Printf("notifier: dropping message: %v", err)
		_ = d.Nack(false, false)
	default:
		log.Printf("notifier: delivery failed, requeueing: %v", err)
		_ = sleep(ctx, c.retryDelay())
		_ = d.Nack(false, true)
	}
}

func (c *Consumer) retryDelay() time.Duration {
	if c.RetryDelay > 0 {
		return c.RetryDelay
	}
	return 5 * time.Second
}

// Handle decodes body and delivers it to every sink.  Every sink is tried;
// the joined sink errors are returned.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev ReservationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	timeout := c.SinkTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	var errs []error
	for _, s := range c.Sinks {
		sctx, cancel := context.WithTimeout(ctx, timeout)
		if err := s.Deliver(sctx, ev); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
