package scheduler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/confhall/waitlist-service/internal/repository"
)

// Promote runs the promotion engine (§4.2): it locks the conference
// row, re-checks that a slot is actually free, selects the FIFO head
// of the waitlist, moves it to CONFIRMATION_PENDING with a deadline of
// now+ConfirmWindow, reserves the slot against capacity immediately
// (the offer holds the seat), and schedules a confirmation-timer bus
// message so the offer expires if not acted on. Grounded on
// queue.rs::promote_next_waitlisted_person.
//
// Promote is safe to call speculatively — e.g. once per cancellation
// and once per expired offer — since it re-reads available_slots and
// the waitlist under the conference's row lock before acting, and does
// nothing if there is no slot or no one waiting.
func (s *Scheduler) Promote(ctx context.Context, conferenceID uint64) error {
	var (
		promotedBookingID uint64
		didPromote        bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		conf, err := s.Conferences.GetByIDForUpdateTx(ctx, tx, conferenceID)
		if err != nil {
			if errors.Is(err, repository.ErrConferenceNotFound) {
				return nil // conference gone; nothing to promote
			}
			return err
		}
		if conf.AvailableSlots <= 0 {
			return nil
		}
		next, err := s.Bookings.NextWaitlistedForUpdateTx(ctx, tx, conferenceID)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		deadline := nowUTC().Add(s.ConfirmWindow)
		if err := s.Bookings.PromoteToConfirmationPendingTx(ctx, tx, next.ID, deadline); err != nil {
			if errors.Is(err, repository.ErrNoChange) {
				return nil // someone else already moved this booking
			}
			return err
		}
		if err := s.Conferences.DecrAvailableSlotsTx(ctx, tx, conferenceID); err != nil {
			return err
		}
		promotedBookingID = next.ID
		didPromote = true
		return nil
	})
	if err != nil {
		return err
	}
	if !didPromote {
		return nil
	}
	// Queue failures must not unwind a committed promotion: the offer
	// still stands, it just won't auto-expire until the next sweep or
	// manual retry. Grounded on queue.rs's safe_queue_operation note
	// ("queue failures shouldn't block booking operations").
	if err := s.Bus.PublishConfirmationTimer(ctx, promotedBookingID, s.ConfirmWindow); err != nil {
		return nil
	}
	return nil
}
