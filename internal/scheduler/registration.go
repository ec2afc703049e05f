package scheduler

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/confhall/waitlist-service/internal/model"
	"github.com/confhall/waitlist-service/internal/repository"
)

// identifierPattern matches the alphanumeric-plus-space identifiers
// the original validates conference name, location, and topics against
// (original_source/src/main.rs's regex checks on add_user/add_conference).
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// userIDPattern is alphanumeric only, no spaces: per spec.md §6.1,
// user_id does not share the looser name/location/topic pattern.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

const (
	maxConferenceDuration = 12 * time.Hour
	maxConferenceTopics   = 10
	maxUserTopics         = 50
)

// CreateUser validates and registers a new user. Grounded on
// main.rs::add_user.
func (s *Scheduler) CreateUser(ctx context.Context, userID string, topics []string) (*model.User, error) {
	if userID == "" || !userIDPattern.MatchString(userID) {
		return nil, ErrValidation
	}
	if len(topics) == 0 || len(topics) > maxUserTopics {
		return nil, ErrValidation
	}
	for _, t := range topics {
		if t == "" || !identifierPattern.MatchString(t) {
			return nil, ErrValidation
		}
	}
	u := &model.User{UserID: userID, Topics: topics}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateConference validates and registers a new conference, then
// schedules its conference-start timer on the bus so the sweeper fires
// when the event begins. Grounded on main.rs::add_conference, which
// validates name/location, start<end, duration<=12h, slots>0, and
// topic count, then spawns the start-timer scheduling asynchronously.
func (s *Scheduler) CreateConference(ctx context.Context, name, location string, start, end time.Time, totalSlots int, topics []string) (*model.Conference, error) {
	if name == "" || !identifierPattern.MatchString(name) {
		return nil, ErrValidation
	}
	if location == "" || !identifierPattern.MatchString(location) {
		return nil, ErrValidation
	}
	if !end.After(start) {
		return nil, ErrValidation
	}
	if end.Sub(start) > maxConferenceDuration {
		return nil, ErrValidation
	}
	if totalSlots <= 0 {
		return nil, ErrValidation
	}
	if len(topics) == 0 || len(topics) > maxConferenceTopics {
		return nil, ErrValidation
	}
	for _, t := range topics {
		if t == "" || !identifierPattern.MatchString(t) {
			return nil, ErrValidation
		}
	}

	c := &model.Conference{
		Name:           name,
		Location:       location,
		StartTS:        start,
		EndTS:          end,
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
		Topics:         topics,
	}
	if err := s.Conferences.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateConference) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	delay := time.Until(c.StartTS)
	// Queue scheduling failures must not fail conference creation; the
	// sweep also runs as a best-effort scan over
	// ListUpcomingStartingBefore for conferences whose timer message
	// was lost. Grounded on queue.rs's safe_queue_operation note.
	_ = s.Bus.PublishConferenceStartTimer(ctx, c.ID, delay)
	return c, nil
}
