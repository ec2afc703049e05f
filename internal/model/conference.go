package model

import "time"

// Conference is a capacity-limited event with a fixed schedule. Unlike
// a seating chart, a conference tracks only a slot count: seats are
// fungible, so admission and waitlist logic reason about
// AvailableSlots rather than individual seat identities.
//
// Fields:
//
//	ID              – primary key identifier.
//	Name            – unique, human-chosen identifier used in URLs.
//	Location        – free-text venue description.
//	StartTS         – when the conference begins; bookings may not be
//	                  created for a conference whose StartTS has passed.
//	EndTS           – when the conference ends; must be after StartTS and
//	                  within the 12-hour maximum duration.
//	TotalSlots      – capacity at creation time, never changes.
//	AvailableSlots  – capacity remaining; decremented on direct confirm
//	                  and on promotion, incremented on a Confirmed
//	                  cancellation.
//	Topics          – declared subject tags, display-only.
//	CreatedAt       – creation timestamp.
type Conference struct {
	ID             uint64    // conferences.id
	Name           string    // conferences.name
	Location       string    // conferences.location
	StartTS        time.Time // conferences.start_ts
	EndTS          time.Time // conferences.end_ts
	TotalSlots     int       // conferences.total_slots
	AvailableSlots int       // conferences.available_slots
	Topics         []string  // conference_topics.topic, one row per entry
	CreatedAt      time.Time // conferences.created_at
}

// HasStarted reports whether the conference's start time has passed
// relative to now. Sweep and admission logic both gate on this.
func (c Conference) HasStarted(now time.Time) bool {
	return !now.Before(c.StartTS)
}

// Overlaps reports whether the half-open interval [c.StartTS, c.EndTS)
// intersects [otherStart, otherEnd).
func (c Conference) Overlaps(otherStart, otherEnd time.Time) bool {
	return c.StartTS.Before(otherEnd) && otherStart.Before(c.EndTS)
}
