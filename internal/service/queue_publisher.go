// Package service provides the bus-facing half of the scheduler: a
// publisher satisfying scheduler.Bus, and the three long-lived
// consumers that drive promotion, cycling, and the start sweep from
// bus deliveries.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/google/uuid"

	"github.com/confhall/waitlist-service/internal/queue"
)

// Publisher implements scheduler.Bus over RabbitMQ. Connection failures
// are logged, and every error is returned so callers can choose to ignore them without
// interrupting the request flow that triggered the publish, the same
// posture as the teacher's PublishBookingConfirmed and grounded on
// queue.rs's safe_queue_operation ("queue failures shouldn't block
// booking operations").
type Publisher struct{}

// NewPublisher constructs a Publisher. It dials per publish rather
// than holding a long-lived connection, matching the teacher's
// PublishBookingConfirmed; the scheduler only publishes a handful of
// messages per request, so the per-call dial cost is not on a hot
// path the way the consumers' long-lived connections are.
func NewPublisher() *Publisher { return &Publisher{} }

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	if err := queue.Declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: declare topology failed: %w", err)
	}
	return conn, ch, nil
}

// PublishSlotFreed announces a conference may have a slot to offer.
func (p *Publisher) PublishSlotFreed(ctx context.Context, conferenceID uint64) error {
	conn, ch, err := p.dial(ctx)
	if err != nil {
		log.Print(err)
		return err
	}
	defer func() { _ = ch.Close(); _ = conn.Close() }()

	body, err := json.Marshal(queue.SlotFreedEvent{DedupeKey: uuid.New(), ConferenceID: conferenceID})
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, queue.EventsExchange, queue.SlotFreedRoutingKey(conferenceID), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// PublishConfirmationTimer schedules an expiry check for a pending
// booking after ttl, via a per-message TTL header and dead-letter
// routing declared in internal/queue/topology.go.
func (p *Publisher) PublishConfirmationTimer(ctx context.Context, bookingID uint64, ttl time.Duration) error {
	conn, ch, err := p.dial(ctx)
	if err != nil {
		log.Print(err)
		return err
	}
	defer func() { _ = ch.Close(); _ = conn.Close() }()

	body, err := json.Marshal(queue.ConfirmationTimerEvent{DedupeKey: uuid.New(), BookingID: bookingID})
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue.ConfirmationTimerQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Expiration:   strconv.FormatInt(ttl.Milliseconds(), 10),
		Body:         body,
	})
}

// PublishConferenceStartTimer schedules a start sweep for a conference
// after delay. A non-positive delay (the conference already started
// by the time this runs) publishes with zero TTL so it dead-letters
// immediately.
func (p *Publisher) PublishConferenceStartTimer(ctx context.Context, conferenceID uint64, delay time.Duration) error {
	conn, ch, err := p.dial(ctx)
	if err != nil {
		log.Print(err)
		return err
	}
	defer func() { _ = ch.Close(); _ = conn.Close() }()

	if delay < 0 {
		delay = 0
	}
	body, err := json.Marshal(queue.ConferenceStartTimerEvent{DedupeKey: uuid.New(), ConferenceID: conferenceID})
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue.ConferenceStartTimerQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
		Body:         body,
	})
}
