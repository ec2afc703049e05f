package model

import "time"

// BookingStatus is the state of a booking in its lifecycle. MySQL
// stores this as a native ENUM column; no custom marshaling is
// required the way a Postgres custom type would need.
type BookingStatus string

const (
	StatusConfirmed           BookingStatus = "CONFIRMED"
	StatusWaitlisted          BookingStatus = "WAITLISTED"
	StatusCanceled            BookingStatus = "CANCELED"
	StatusConfirmationPending BookingStatus = "CONFIRMATION_PENDING"
)

// Booking ties a user to a conference and records where it sits in
// the admission/waitlist state machine.
//
// Fields:
//
//	ID                    – primary key identifier.
//	ConferenceID          – conference this booking is for.
//	UserID                – owner of the booking.
//	Status                – current lifecycle state.
//	CreatedAt             – when the booking was first created.
//	ConfirmationDeadline  – set when Status is ConfirmationPending; the
//	                        offer lapses if not confirmed by this time.
//	CanceledAt            – set when Status is Canceled.
//	CanConfirm            – stored flag: set on promotion, cleared on
//	                        confirm, cycle or cancel. Passing the deadline
//	                        alone does not clear it; API responses report
//	                        it as true only while the deadline is ahead.
//	WaitlistPosition      – FIFO order among WAITLISTED bookings for the
//	                        same conference; nil once no longer waiting.
type Booking struct {
	ID                   uint64
	ConferenceID         uint64
	UserID               string
	Status               BookingStatus
	CreatedAt            time.Time
	ConfirmationDeadline *time.Time
	CanceledAt           *time.Time
	CanConfirm           bool
	WaitlistPosition     *int
}
