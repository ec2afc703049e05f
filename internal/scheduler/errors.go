// Package scheduler implements the booking state machine: admission,
// promotion, the confirmation window and its cycling, cancellation,
// and the conference-start sweep. It is the single place that decides
// what a booking's status should become; both HTTP handlers and bus
// consumers call into it rather than mutating rows directly.
package scheduler

import "errors"

// Sentinel errors returned by scheduler operations. Handlers translate
// these into HTTP status codes; bus consumers translate them into
// ack/nack decisions.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicate         = errors.New("duplicate booking")
	ErrConferenceStarted = errors.New("conference already started")
	ErrOverlap           = errors.New("overlapping booking")
	ErrInvalidState      = errors.New("invalid booking state")
	ErrExpired           = errors.New("confirmation window expired")
	ErrAccessDenied      = errors.New("access denied")
	ErrConferenceBusy    = errors.New("conference is locked by another request")
)
