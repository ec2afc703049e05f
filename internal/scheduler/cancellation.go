package scheduler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/confhall/waitlist-service/internal/model"
	"github.com/confhall/waitlist-service/internal/repository"
)

// Cancel implements the cancellation handler (§4.4). It takes only the
// booking id: cancellation always succeeds for any existing, not yet
// canceled booking regardless of who calls it. A CONFIRMED or
// CONFIRMATION_PENDING booking releases its reserved slot and triggers
// a re-evaluation of the conference's waitlist; a WAITLISTED booking
// simply drops out of the FIFO with no slot to release. Grounded on
// actions.rs::cancel_booking.
func (s *Scheduler) Cancel(ctx context.Context, bookingID uint64) error {
	var conferenceID uint64
	var releasedSlot bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.Bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return ErrNotFound
			}
			return err
		}
		if b.Status == model.StatusCanceled {
			return ErrInvalidState
		}
		if _, err := s.Conferences.GetByIDForUpdateTx(ctx, tx, b.ConferenceID); err != nil {
			return err
		}

		wasSlotHolder := b.Status == model.StatusConfirmed || b.Status == model.StatusConfirmationPending
		if err := s.Bookings.CancelTx(ctx, tx, bookingID); err != nil {
			if errors.Is(err, repository.ErrNoChange) {
				return ErrInvalidState
			}
			return err
		}
		if wasSlotHolder {
			if err := s.Conferences.IncrAvailableSlotsTx(ctx, tx, b.ConferenceID); err != nil {
				return err
			}
			releasedSlot = true
		}
		conferenceID = b.ConferenceID
		return nil
	})
	if err != nil {
		return err
	}
	if !releasedSlot {
		return nil
	}
	// Promote directly rather than only notifying over the bus: the
	// cancellation already holds no lock by the time this runs, so a
	// direct call is just as safe as a round trip through
	// slot.freed.{confID}, and avoids a window where a freed slot sits
	// idle until a consumer picks up the message. The bus notification
	// is still sent so any other process watching the queue observes
	// the same event.
	if err := s.Promote(ctx, conferenceID); err != nil {
		return err
	}
	if err := s.Bus.PublishSlotFreed(ctx, conferenceID); err != nil {
		return nil
	}
	return nil
}
