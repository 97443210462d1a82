package config

import "time"

// QueueConfig configures the RabbitMQ publisher in the server and the
// consumer in the notifier worker.  An empty URL disables publishing.
type QueueConfig struct {
	URL             string
	Queue           string
	LogFile         string        // notifier: file every notification is appended to
	SlackWebhookURL string        // notifier: optional incoming webhook
	SlackTimeout    time.Duration // notifier: per webhook call
	ReconnectDelay  time.Duration // notifier: wait between connection attempts
}

// LoadQueueConfig reads RABBITMQ_URL (or AMQP_URL) and the notifier
// settings.
func LoadQueueConfig() QueueConfig {
	url := envStr("RABBITMQ_URL", "")
	if url == "" {
		url = envStr("AMQP_URL", "")
	}
	return QueueConfig{
		URL:             url,
		Queue:           envStr("RESERVATION_QUEUE", "reservation.created"),
		LogFile:         envStr("NOTIFY_LOG_FILE", "reservations.log"),
		SlackWebhookURL: envStr("SLACK_WEBHOOK_URL", ""),
		SlackTimeout:    envDur("SLACK_TIMEOUT", 5*time.Second),
		ReconnectDelay:  envDur("RABBITMQ_RECONNECT_DELAY", 5*time.Second),
	}
}

// Enabled reports whether a broker URL is configured.
func (q QueueConfig) Enabled() bool { return q.URL != "" }
