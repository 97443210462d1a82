// Package queue carries reservation notifications over RabbitMQ: the
// server publishes ReservationCreatedEvent and the notifier worker
// consumes it.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/reservation"
)

// DefaultQueue is the durable queue events are routed to.
const DefaultQueue = "reservation.created"

// wallClock is the format of every timestamp in the payload.
const wallClock = "2006-01-02T15:04:05"

// ReservationCreatedEvent is published when a manager books a space.  It
// carries everything a notification needs so consumers never query the
// primary database.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	MapID         uint64 `json:"map_id"`
	SpaceID       uint64 `json:"space_id"`
	SpaceName     string `json:"space_name"`
	OwnerName     string `json:"name"`
	Description   string `json:"description"`
	StartTime     string `json:"start_date_time"`
	EndTime       string `json:"end_date_time"`
	CreatedAt     string `json:"created_at"`
}

// EventFromNotification converts the core notification into its wire form.
func EventFromNotification(n reservation.Notification) ReservationCreatedEvent {
	created := n.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return ReservationCreatedEvent{
		ReservationID: n.ReservationID,
		MapID:         n.MapID,
		SpaceID:       n.SpaceID,
		SpaceName:     n.SpaceName,
		OwnerName:     n.OwnerName,
		Description:   n.Description,
		StartTime:     n.StartTime.UTC().Format(wallClock),
		EndTime:       n.EndTime.UTC().Format(wallClock),
		CreatedAt:     created.UTC().Format(wallClock),
	}
}

// LogLine renders ev as a single line for the notification log file.
func (ev ReservationCreatedEvent) LogLine() string {
	return fmt.Sprintf("[%s] Reservation created | reservation_id=%d | map_id=%d | space_id=%d | space=%q | name=%q | description=%q | from=%s | to=%s\n",
		ev.CreatedAt, ev.ReservationID, ev.MapID, ev.SpaceID, ev.SpaceName, ev.OwnerName, ev.Description, ev.StartTime, ev.EndTime)
}

// SlackText is the human readable message posted to Slack.
func (ev ReservationCreatedEvent) SlackText() string {
	text := fmt.Sprintf(":calendar: *%s* booked *%s* from %s to %s", ev.OwnerName, ev.SpaceName, ev.StartTime, ev.EndTime)
	if ev.Description != "" {
		text += "\n> " + ev.Description
	}
	return text
}
