// Command notifier consumes reservation events from RabbitMQ and fans them
// out to a log file and, when configured, a Slack webhook.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/space-reservation/internal/config"
	"github.com/iliyamo/space-reservation/internal/queue"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadQueueConfig()
	if !cfg.Enabled() {
		log.Fatal("notifier: RABBITMQ_URL (or AMQP_URL) is required")
	}

	sinks := []queue.Sink{&queue.FileSink{Path: cfg.LogFile}}
	if cfg.SlackWebhookURL != "" {
		sinks = append(sinks, &queue.SlackSink{
			WebhookURL: cfg.SlackWebhookURL,
			Client:     &http.Client{Timeout: cfg.SlackTimeout},
		})
	}

	c := &queue.Consumer{
		URL:            cfg.URL,
		Queue:          cfg.Queue,
		Sinks:          sinks,
		ReconnectDelay: cfg.ReconnectDelay,
		SinkTimeout:    10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("notifier: consuming %q, writing to %s (slack=%t)", cfg.Queue, cfg.LogFile, cfg.SlackWebhookURL != "")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("notifier: %v", err)
	}
}
