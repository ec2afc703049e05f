package model

import "time"

// User represents a registered attendee. Unlike an account-holding
// identity, a User carries no credential: user_id is supplied by the
// caller and is opaque to this service.
//
// Fields:
//
//	UserID    – caller-supplied identifier, unique across the system.
//	Topics    – declared interests, used only for display; booking logic
//	            never reads this field.
//	CreatedAt – timestamp of registration.
type User struct {
	UserID    string    // users.user_id
	Topics    []string  // user_topics.topic, one row per entry
	CreatedAt time.Time // users.created_at
}
