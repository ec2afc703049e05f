package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/confhall/waitlist-service/internal/model"
	"github.com/confhall/waitlist-service/internal/repository"
)

// Confirm implements the confirmation API (§4.6). Ownership is checked
// before any state check — a caller who does not own the booking gets
// ErrAccessDenied regardless of the booking's status, so the error
// response never leaks whether a booking exists in a confirmable
// state to someone who isn't its owner. Grounded on
// actions.rs::confirm_waitlist_booking_secure's ordering.
func (s *Scheduler) Confirm(ctx context.Context, bookingID uint64, userID string) (*model.Booking, error) {
	var confirmed model.Booking
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.Bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return ErrNotFound
			}
			return err
		}
		if b.UserID != userID {
			return ErrAccessDenied
		}

		c, err := s.Conferences.GetByIDForUpdateTx(ctx, tx, b.ConferenceID)
		if err != nil {
			return err
		}
		if c.HasStarted(nowUTC()) {
			return ErrConferenceStarted
		}

		if b.Status != model.StatusConfirmationPending {
			return ErrInvalidState
		}
		if b.ConfirmationDeadline == nil || nowUTC().After(*b.ConfirmationDeadline) {
			return ErrExpired
		}

		if err := s.Bookings.ConfirmTx(ctx, tx, bookingID); err != nil {
			if errors.Is(err, repository.ErrNoChange) {
				return ErrInvalidState
			}
			return err
		}
		if err := s.cancelOverlappingWaitlistedTx(ctx, tx, userID, c); err != nil {
			return err
		}
		confirmed = *b
		confirmed.Status = model.StatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// HandleExpiry implements the cycling half of §4.3: a confirmation-
// timer bus message arrives for bookingID, and this re-reads the
// booking's current state before acting (the idempotence requirement
// for at-least-once delivery — a duplicate or late timer message for
// an already-confirmed or already-canceled booking is a safe no-op).
// If the booking is still CONFIRMATION_PENDING and past its deadline,
// it cycles to the waitlist tail and re-runs Promote for the
// conference so the next waiter gets an offer. Grounded on
// queue.rs::ExpiredConfirmationConsumer.
func (s *Scheduler) HandleExpiry(ctx context.Context, bookingID uint64) error {
	var conferenceID uint64
	var cycled bool
	var remaining time.Duration
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.Bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return nil
			}
			return err
		}
		if b.Status != model.StatusConfirmationPending {
			return nil // already confirmed, canceled, or already cycled
		}
		if b.ConfirmationDeadline != nil && nowUTC().Before(*b.ConfirmationDeadline) {
			// Premature timer fire; a fresh timer for the rest of the
			// window is published below, so the real deadline message follows.
			remaining = b.ConfirmationDeadline.Sub(nowUTC())
			return nil
		}
		if _, err := s.Conferences.GetByIDForUpdateTx(ctx, tx, b.ConferenceID); err != nil {
			return err
		}
		if err := s.Bookings.CycleToWaitlistTailTx(ctx, tx, bookingID, b.ConferenceID); err != nil {
			if errors.Is(err, repository.ErrNoChange) {
				return nil
			}
			return err
		}
		// The expired offer relinquishes the slot reserved for it at
		// promotion time, so the next waitlisted person can be offered
		// the same seat.
		if err := s.Conferences.IncrAvailableSlotsTx(ctx, tx, b.ConferenceID); err != nil {
			return err
		}
		conferenceID = b.ConferenceID
		cycled = true
		return nil
	})
	if err != nil {
		return err
	}
	if remaining > 0 {
		return s.Bus.PublishConfirmationTimer(ctx, bookingID, remaining)
	}
	if !cycled {
		return nil
	}
	return s.Promote(ctx, conferenceID)
}
