package queue

import amqp "github.com/rabbitmq/amqp091-go"

// Exchange and queue names for the booking scheduler's bus traffic.
// Grounded on queue.rs::WaitlistQueueService::initialize, adapted from
// per-conference queue declarations to a topic-exchange fan-in so a
// single long-lived consumer can subscribe once rather than declaring
// a new queue per conference as conferences are created.
const (
	// EventsExchange is a topic exchange carrying immediate,
	// non-timed notifications. Spec.md names the per-conference queue
	// "slot.freed.{confId}"; that naming survives as the routing key
	// (SlotFreedRoutingKey(confID)) while delivery fans into one queue.
	EventsExchange = "waitlist.events"

	// SlotFreedQueue is the single queue every slot-freed notification
	// lands in, regardless of which conference it concerns. Handlers
	// read the conference ID out of the message body.
	SlotFreedQueue = "slot.freed.all"

	// DeadLetterExchange receives messages whose TTL has expired on
	// either timer queue, fanning them out by routing key to the
	// matching "expired" queue.
	DeadLetterExchange = "waitlist.dlx"

	// ConfirmationTimerQueue holds one message per outstanding
	// CONFIRMATION_PENDING offer, each published with a per-message
	// TTL equal to the confirmation window (or to what is left of it
	// when an early-firing timer is re-armed). A message that survives
	// to its TTL is dead-lettered into ConfirmationExpiredQueue.
	ConfirmationTimerQueue = "confirmation.timer"
	ConfirmationExpiredKey = "confirmation.expired"
	ConfirmationExpiredQueue = "confirmation.expired"

	// ConferenceStartTimerQueue holds one message per conference,
	// published with a per-message TTL equal to the delay until its
	// start time. On expiry it dead-letters into
	// ConferenceStartsQueue, which the sweep consumer reads.
	ConferenceStartTimerQueue = "conference.start.timer"
	ConferenceStartsKey       = "conference.starts"
	ConferenceStartsQueue     = "conference.starts"
)

// SlotFreedRoutingKey builds the per-conference routing key a
// notification for conferenceID is published under.
func SlotFreedRoutingKey(conferenceID uint64) string {
	return "slot.freed." + uint64ToString(conferenceID)
}

// SlotFreedBindingKey is the wildcard binding that routes every
// per-conference slot-freed key into SlotFreedQueue.
const SlotFreedBindingKey = "slot.freed.*"

func uint64ToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Declare declares every exchange, queue, and binding this package
// uses. It is idempotent and safe to call from both the publisher and
// the consumer at startup, mirroring
// queue.rs::WaitlistQueueService::initialize.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(SlotFreedQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(SlotFreedQueue, SlotFreedBindingKey, EventsExchange, false, nil); err != nil {
		return err
	}

	timerArgs := func(routingKey string) amqp.Table {
		return amqp.Table{
			"x-dead-letter-exchange":    DeadLetterExchange,
			"x-dead-letter-routing-key": routingKey,
		}
	}
	if _, err := ch.QueueDeclare(ConfirmationTimerQueue, true, false, false, false, timerArgs(ConfirmationExpiredKey)); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(ConfirmationExpiredQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(ConfirmationExpiredQueue, ConfirmationExpiredKey, DeadLetterExchange, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(ConferenceStartTimerQueue, true, false, false, false, timerArgs(ConferenceStartsKey)); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(ConferenceStartsQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(ConferenceStartsQueue, ConferenceStartsKey, DeadLetterExchange, false, nil); err != nil {
		return err
	}
	return nil
}
