package scheduler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/confhall/waitlist-service/internal/lock"
	"github.com/confhall/waitlist-service/internal/model"
	"github.com/confhall/waitlist-service/internal/repository"
)

// BookResult reports the outcome of an admission decision.
type BookResult struct {
	Booking          model.Booking
	WasConfirmed     bool
	WaitlistPosition int // meaningful only when WasConfirmed is false
}

// Book runs the admission decider (§4.1): it locks the conference row,
// checks for a started conference, rejects a second active booking for
// the same user/conference, checks for an overlapping booking in
// another conference, then either confirms the booking directly or
// places it at the waitlist tail — directly confirming only when
// capacity is free AND no bypass-protection guard (an existing
// CONFIRMATION_PENDING offer or any WAITLISTED booking) is blocking it.
// Grounded on actions.rs::create_booking_atomic.
func (s *Scheduler) Book(ctx context.Context, userID, conferenceName string) (*BookResult, error) {
	exists, err := s.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	// A quick, lock-free lookup just to learn the conference ID so the
	// advisory lock below can be keyed on it. GetByNameForUpdateTx inside
	// the transaction remains the authoritative, race-free read.
	precheck, err := s.Conferences.GetByName(ctx, conferenceName)
	if err != nil {
		if errors.Is(err, repository.ErrConferenceNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	conferenceLock, err := lock.AcquireConference(ctx, s.Redis, precheck.ID, s.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, ErrConferenceBusy
		}
		return nil, err
	}
	defer func() { _ = conferenceLock.Release(ctx) }()

	var result BookResult
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		conf, err := s.Conferences.GetByNameForUpdateTx(ctx, tx, conferenceName)
		if err != nil {
			if errors.Is(err, repository.ErrConferenceNotFound) {
				return ErrNotFound
			}
			return err
		}
		if conf.HasStarted(nowUTC()) {
			return ErrConferenceStarted
		}

		existing, err := s.Bookings.ActiveForUserAndConferenceForUpdateTx(ctx, tx, userID, conf.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicate
		}

		overlap, err := s.hasOverlap(ctx, tx, userID, conf)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		pending, err := s.Bookings.CountPendingConfirmationsTx(ctx, tx, conf.ID)
		if err != nil {
			return err
		}
		waitlisted, err := s.Bookings.CountWaitlistedTx(ctx, tx, conf.ID)
		if err != nil {
			return err
		}

		canConfirmDirectly := conf.AvailableSlots > 0 && pending == 0 && waitlisted == 0
		if canConfirmDirectly {
			if err := s.Conferences.DecrAvailableSlotsTx(ctx, tx, conf.ID); err != nil {
				return err
			}
			b, err := s.Bookings.CreateConfirmedTx(ctx, tx, conf.ID, userID)
			if err != nil {
				if errors.Is(err, repository.ErrDuplicateBooking) {
					return ErrDuplicate
				}
				return err
			}
			if err := s.cancelOverlappingWaitlistedTx(ctx, tx, userID, conf); err != nil {
				return err
			}
			result = BookResult{Booking: *b, WasConfirmed: true}
			return nil
		}

		b, err := s.Bookings.CreateWaitlistedTx(ctx, tx, conf.ID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateBooking) {
				return ErrDuplicate
			}
			return err
		}
		pos := 0
		if b.WaitlistPosition != nil {
			pos = *b.WaitlistPosition
		}
		result = BookResult{Booking: *b, WasConfirmed: false, WaitlistPosition: pos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
