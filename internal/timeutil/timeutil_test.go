package timeutil

import (
	"testing"
	"time"
)

func TestNewWindowBounds(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 30, 0, 0, time.UTC)

	w, err := NewWindow(30, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := w.Start(), now.AddDate(0, 0, -30); !got.Equal(want) {
		t.Errorf("start: want %v, got %v", want, got)
	}
	if !w.End().Equal(now) {
		t.Errorf("end: want %v, got %v", now, w.End())
	}
	if w.Days() != 30 {
		t.Errorf("days: want 30, got %d", w.Days())
	}
}

func TestNewWindowRejectsOutOfRangeDays(t *testing.T) {
	now := time.Now()
	for _, days := range []int{0, -1, MaxWindowDays + 1} {
		if _, err := NewWindow(days, now, time.UTC); err != ErrInvalidDays {
			t.Errorf("days=%d: want ErrInvalidDays, got %v", days, err)
		}
	}
	if _, err := NewWindow(MaxWindowDays, now, time.UTC); err != nil {
		t.Errorf("days=%d should be accepted, got %v", MaxWindowDays, err)
	}
}

func TestWindowContains(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	w, err := NewWindow(1, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"thirty minutes ago", now.Add(-30 * time.Minute), true},
		{"two days ago", now.AddDate(0, 0, -2), false},
		{"exactly at start", now.AddDate(0, 0, -1), true},
		{"at end (exclusive)", now, false},
	}
	for _, tt := range tests {
		if got := w.Contains(tt.ts); got != tt.want {
			t.Errorf("%s: want %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestTruncateToDayAndDayKey(t *testing.T) {
	ts := time.Date(2025, time.March, 8, 23, 45, 1, 0, time.UTC)
	day := TruncateToDay(ts, time.UTC)
	if want := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC); !day.Equal(want) {
		t.Errorf("truncate: want %v, got %v", want, day)
	}
	if key := DayKey(ts, time.UTC); key != "2025-03-08" {
		t.Errorf("day key: want 2025-03-08, got %s", key)
	}
	if EnsureLocation(nil) != time.UTC {
		t.Error("EnsureLocation(nil) should return UTC")
	}
}
