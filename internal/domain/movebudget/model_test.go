package movebudget

import (
	"testing"
	"time"
)

func TestWeekID(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{at: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), want: "2026-W42"},
		{at: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), want: "2026-W01"},
		{at: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), want: "2026-W53"},
	}
	for _, tc := range tests {
		if got := WeekID(tc.at); got != tc.want {
			t.Fatalf("WeekID(%v): got=%s want=%s", tc.at, got, tc.want)
		}
	}
}

func TestWeekBoundaries(t *testing.T) {
	thursday := time.Date(2026, 10, 15, 12, 30, 0, 0, time.UTC)
	start := WeekStart(thursday)
	if want := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("unexpected week start: %v", start)
	}
	if next := NextWeekStart(thursday); !next.Equal(start.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected next week start: %v", next)
	}
	if WeekID(start) != WeekID(thursday) {
		t.Fatalf("week start must belong to the same week")
	}
}

func TestCounterRemaining(t *testing.T) {
	if got := (Counter{Moves: 1}).Remaining(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := (Counter{Moves: 5}).Remaining(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
