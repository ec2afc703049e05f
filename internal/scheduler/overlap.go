package scheduler

import (
	"context"
	"database/sql"

	"github.com/confhall/waitlist-service/internal/model"
	"github.com/confhall/waitlist-service/internal/repository"
)

// hasOverlap reports whether userID already holds a CONFIRMED or
// CONFIRMATION_PENDING booking for a conference whose [start, end)
// interval intersects the given conference's. WAITLISTED bookings do
// not count: they hold no slot and do not block further bookings, by
// design. Grounded on actions.rs::check_user_has_overlapping_booking.
func (s *Scheduler) hasOverlap(ctx context.Context, tx *sql.Tx, userID string, conf *model.Conference) (bool, error) {
	overlaps, err := s.Bookings.ListOverlappingForUserTx(ctx, tx, userID, conf.StartTS, conf.EndTS, conf.ID)
	if err != nil {
		return false, err
	}
	return len(overlaps) > 0, nil
}

// cancelOverlappingWaitlistedTx cancels the user's other WAITLISTED
// bookings that overlap the just-confirmed conference. A user who has
// just been confirmed for one slot in a time window has no use for a
// waitlist spot in a conflicting one; grounded on
// actions.rs::remove_from_overlapping_waitlists.
func (s *Scheduler) cancelOverlappingWaitlistedTx(ctx context.Context, tx *sql.Tx, userID string, conf *model.Conference) error {
	overlaps, err := s.Bookings.ListWaitlistedOverlappingForUserTx(ctx, tx, userID, conf.StartTS, conf.EndTS, conf.ID)
	if err != nil {
		return err
	}
	for _, b := range overlaps {
		if err := s.Bookings.CancelTx(ctx, tx, b.ID); err != nil && err != repository.ErrNoChange {
			return err
		}
	}
	return nil
}
