// Package queue defines message payloads and topology for the
// booking scheduler's bus traffic, and the generic consume loop used
// by every queue it declares.
package queue

import "github.com/google/uuid"

// SlotFreedEvent announces that a conference may have a slot ready to
// offer and should be re-evaluated for promotion. Grounded on
// queue.rs's SlotAvailableMessage.
type SlotFreedEvent struct {
	DedupeKey    uuid.UUID `json:"dedupe_key"`
	ConferenceID uint64    `json:"conference_id"`
}

// ConfirmationTimerEvent fires once a CONFIRMATION_PENDING booking's
// offer window elapses. Grounded on queue.rs's
// ConfirmationExpirationMessage.
type ConfirmationTimerEvent struct {
	DedupeKey uuid.UUID `json:"dedupe_key"`
	BookingID uint64    `json:"booking_id"`
}

// ConferenceStartTimerEvent fires once a conference's start time has
// arrived, triggering the start sweep. Grounded on queue.rs's
// ConferenceStartMessage.
type ConferenceStartTimerEvent struct {
	DedupeKey    uuid.UUID `json:"dedupe_key"`
	ConferenceID uint64    `json:"conference_id"`
}
