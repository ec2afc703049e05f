package queue

import "testing"

func TestSlotFreedRoutingKey(t *testing.T) {
	tests := []struct {
		id   uint64
		want string
	}{
		{0, "slot.freed.0"},
		{1, "slot.freed.1"},
		{42, "slot.freed.42"},
		{123456789, "slot.freed.123456789"},
	}
	for _, tc := range tests {
		if got := SlotFreedRoutingKey(tc.id); got != tc.want {
			t.Errorf("SlotFreedRoutingKey(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
