package scheduler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/confhall/waitlist-service/internal/repository"
)

// SweepConferenceStart implements the conference-start sweeper (§4.5):
// once a conference's start time has passed, every WAITLISTED and
// CONFIRMATION_PENDING booking for it is canceled — a waitlist offer
// or a pending spot is meaningless once the event has already begun.
// CONFIRMED bookings are untouched. Grounded on
// queue.rs::ConferenceStartConsumer::process_conference_start.
func (s *Scheduler) SweepConferenceStart(ctx context.Context, conferenceID uint64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		conf, err := s.Conferences.GetByIDForUpdateTx(ctx, tx, conferenceID)
		if err != nil {
			if errors.Is(err, repository.ErrConferenceNotFound) {
				return nil
			}
			return err
		}
		if !conf.HasStarted(nowUTC()) {
			return nil // fired early somehow; leave bookings alone
		}
		_, err = s.Bookings.SweepConferenceStartTx(ctx, tx, conferenceID)
		return err
	})
}
