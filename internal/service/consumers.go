package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/confhall/waitlist-service/internal/queue"
	"github.com/confhall/waitlist-service/internal/scheduler"
)

// recoveryScanInterval is how often the belt-and-suspenders sweep scan
// runs, independent of the per-conference start timer delivered over
// the bus.
const recoveryScanInterval = time.Minute

// StartConsumers launches the long-lived consumers that drive the
// scheduler from bus deliveries: a freed-slot re-check, confirmation
// expiry (cycling), and the conference-start sweep. Each runs its own
// reconnect loop via queue.Consume and never returns except when ctx is
// canceled; callers typically run each in its own goroutine. It also
// starts a periodic recovery scan that re-sweeps any conference whose
// start-timer message was lost.
func StartConsumers(ctx context.Context, s *scheduler.Scheduler) {
	go func() {
		_ = queue.Consume(ctx, "slot-freed-consumer", queue.SlotFreedQueue, slotFreedHandler(s))
	}()
	go func() {
		_ = queue.Consume(ctx, "confirmation-expiry-consumer", queue.ConfirmationExpiredQueue, confirmationExpiryHandler(s))
	}()
	go func() {
		_ = queue.Consume(ctx, "conference-start-consumer", queue.ConferenceStartsQueue, conferenceStartHandler(s))
	}()
	go recoveryScanLoop(ctx, s)
}

// recoveryScanLoop periodically re-sweeps conferences past their start
// time that still carry open WAITLISTED/CONFIRMATION_PENDING bookings.
// It exists for the case where a conference-start timer message never
// arrives (a dropped publish, a missed TTL/DLX hop): without it, those
// bookings would sit unswept indefinitely instead of just until the
// next tick. Grounded on queue.rs's safe_queue_operation note that
// timer delivery is a convenience, not the sole source of truth.
func recoveryScanLoop(ctx context.Context, s *scheduler.Scheduler) {
	ticker := time.NewTicker(recoveryScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			confs, err := s.Conferences.ListUpcomingStartingBefore(ctx)
			if err != nil {
				log.Printf("recovery scan: list upcoming: %v", err)
				continue
			}
			for _, c := range confs {
				if err := s.SweepConferenceStart(ctx, c.ID); err != nil {
					log.Printf("recovery scan: sweep conference %d: %v", c.ID, err)
				}
			}
		}
	}
}

func slotFreedHandler(s *scheduler.Scheduler) queue.Handler {
	return func(ctx context.Context, body []byte) error {
		var ev queue.SlotFreedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal slot freed event: %w", err)
		}
		return s.Promote(ctx, ev.ConferenceID)
	}
}

func confirmationExpiryHandler(s *scheduler.Scheduler) queue.Handler {
	return func(ctx context.Context, body []byte) error {
		var ev queue.ConfirmationTimerEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal confirmation timer event: %w", err)
		}
		return s.HandleExpiry(ctx, ev.BookingID)
	}
}

func conferenceStartHandler(s *scheduler.Scheduler) queue.Handler {
	return func(ctx context.Context, body []byte) error {
		var ev queue.ConferenceStartTimerEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal conference start event: %w", err)
		}
		return s.SweepConferenceStart(ctx, ev.ConferenceID)
	}
}
