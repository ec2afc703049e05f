// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// scheduler package to distinguish between different failure scenarios
// without depending on database/sql directly.
package repository

import "errors"

// ErrConferenceNotFound indicates that no conference row matches the
// given name or id.
var ErrConferenceNotFound = errors.New("conference not found")

// ErrDuplicateConference indicates that a conference with the given
// name already exists.
var ErrDuplicateConference = errors.New("duplicate conference name")

// ErrUserNotFound indicates that no user row matches the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrBookingNotFound indicates that no booking row matches the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateBooking is returned when a user already has a non-canceled
// booking for the same conference.
var ErrDuplicateBooking = errors.New("duplicate booking")

// ErrNoChange indicates an UPDATE matched zero rows because the target
// row's state no longer satisfies the WHERE clause (e.g. a concurrent
// transaction already moved it out of the expected status).
var ErrNoChange = errors.New("no change")
