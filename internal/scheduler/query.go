package scheduler

import (
	"context"
	"errors"

	"github.com/confhall/waitlist-service/internal/repository"
)

// BookingView is a booking joined with the name of the conference it
// belongs to, shaped for the GET /booking/{id} and
// GET /conference/{name}/bookings responses.
type BookingView = repository.BookingWithUser

// GetBooking fetches a booking along with its conference's name. It is
// a plain read with no row lock: callers display a snapshot, they
// don't act on it, so there is nothing to serialize against.
func (s *Scheduler) GetBooking(ctx context.Context, bookingID uint64) (*BookingView, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	conf, err := s.Conferences.GetByID(ctx, b.ConferenceID)
	if err != nil {
		return nil, err
	}
	return &BookingView{Booking: *b, ConferenceName: conf.Name}, nil
}

// ListConferenceBookings returns every booking for a conference by
// name, oldest first by creation time. Returns ErrNotFound if no
// such conference exists.
func (s *Scheduler) ListConferenceBookings(ctx context.Context, conferenceName string) ([]BookingView, error) {
	if _, err := s.Conferences.GetByName(ctx, conferenceName); err != nil {
		if errors.Is(err, repository.ErrConferenceNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Bookings.ListByConferenceName(ctx, conferenceName)
}
