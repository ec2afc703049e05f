package model

import (
	"testing"
	"time"
)

func TestConferenceHasStarted(t *testing.T) {
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	c := Conference{StartTS: start}
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Minute), false},
		{"exactly at start", start, true},
		{"after start", start.Add(time.Minute), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.HasStarted(tc.now); got != tc.want {
				t.Errorf("HasStarted(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestConferenceOverlaps(t *testing.T) {
	c := Conference{
		StartTS: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		EndTS:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical window", c.StartTS, c.EndTS, true},
		{"fully contained", c.StartTS.Add(30 * time.Minute), c.StartTS.Add(90 * time.Minute), true},
		{"overlaps start edge", c.StartTS.Add(-time.Hour), c.StartTS.Add(time.Minute), true},
		{"touches end, half-open, no overlap", c.EndTS, c.EndTS.Add(time.Hour), false},
		{"touches start, half-open, no overlap", c.StartTS.Add(-2 * time.Hour), c.StartTS, false},
		{"entirely before", c.StartTS.Add(-3 * time.Hour), c.StartTS.Add(-2 * time.Hour), false},
		{"entirely after", c.EndTS.Add(time.Hour), c.EndTS.Add(2 * time.Hour), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Overlaps(tc.start, tc.end); got != tc.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
