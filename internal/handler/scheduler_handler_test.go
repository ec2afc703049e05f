package handler

import (
	"testing"

	"github.com/confhall/waitlist-service/internal/model"
)

func TestWireStatus(t *testing.T) {
	tests := []struct {
		status model.BookingStatus
		want   string
	}{
		{model.StatusConfirmed, "CONFIRMED"},
		{model.StatusWaitlisted, "WAITLISTED"},
		{model.StatusCanceled, "CANCELED"},
		{model.StatusConfirmationPending, "ConfirmationPending"},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := wireStatus(tc.status); got != tc.want {
				t.Errorf("wireStatus(%v) = %q, want %q", tc.status, got, tc.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12a", 0, true},
		{"-1", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := parseID(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseID(%q) expected error, got %d", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseID(%q) unexpected error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("parseID(%q) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}
