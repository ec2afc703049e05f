package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// CreateUser and CreateConference reject invalid input before touching
// any repository, so a bare Scheduler (nil repos) is enough to exercise
// the rejection paths without a database.

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	s := &Scheduler{}
	tests := []struct {
		name   string
		userID string
		topics []string
	}{
		{"empty id", "", nil},
		{"id with punctuation", "alice!", nil},
		{"topic with punctuation", "alice", []string{"go-lang"}},
		{"too many topics", "alice", manyStrings(51)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.CreateUser(context.Background(), tc.userID, tc.topics); !errors.Is(err, ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateConferenceRejectsInvalidInput(t *testing.T) {
	s := &Scheduler{}
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		confName   string
		location   string
		start, end time.Time
		slots      int
		topics     []string
	}{
		{"empty name", "", "Berlin", base, base.Add(time.Hour), 100, []string{"go"}},
		{"empty location", "GoCon", "", base, base.Add(time.Hour), 100, []string{"go"}},
		{"end before start", "GoCon", "Berlin", base, base.Add(-time.Hour), 100, []string{"go"}},
		{"longer than 12h", "GoCon", "Berlin", base, base.Add(13 * time.Hour), 100, []string{"go"}},
		{"zero slots", "GoCon", "Berlin", base, base.Add(time.Hour), 0, []string{"go"}},
		{"no topics", "GoCon", "Berlin", base, base.Add(time.Hour), 100, nil},
		{"too many topics", "GoCon", "Berlin", base, base.Add(time.Hour), 100, manyStrings(11)},
		{"topic with punctuation", "GoCon", "Berlin", base, base.Add(time.Hour), 100, []string{"go!"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateConference(context.Background(), tc.confName, tc.location, tc.start, tc.end, tc.slots, tc.topics)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func manyStrings(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "topic"
	}
	return out
}
