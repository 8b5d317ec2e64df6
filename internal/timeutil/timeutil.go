package timeutil

import (
	"errors"
	"time"
)

var ErrInvalidDays = errors.New("invalid day count")

const (
	// MaxWindowDays bounds every reporting window accepted at the boundary.
	MaxWindowDays = 365
	// DefaultWindowDays is used when a request omits the days parameter.
	DefaultWindowDays = 30
)

// DayLayout is the calendar-date format used by the sparse time series.
const DayLayout = "2006-01-02"

// Window represents a trailing N-day reporting window anchored to a location.
type Window struct {
	days  int
	start time.Time
	end   time.Time
	loc   *time.Location
}

// EnsureLocation returns UTC when loc is nil.
func EnsureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// NewWindow constructs the [now-days, now) window in the given location.
func NewWindow(days int, now time.Time, loc *time.Location) (Window, error) {
	if days < 1 || days > MaxWindowDays {
		return Window{}, ErrInvalidDays
	}
	loc = EnsureLocation(loc)
	now = now.In(loc)
	return Window{
		days:  days,
		start: now.AddDate(0, 0, -days),
		end:   now,
		loc:   loc,
	}, nil
}

// Days returns the window length in days.
func (w Window) Days() int { return w.days }

// Start returns the inclusive start of the window.
func (w Window) Start() time.Time { return w.start }

// End returns the exclusive end of the window.
func (w Window) End() time.Time { return w.end }

// Location returns the reporting timezone for the window.
func (w Window) Location() *time.Location { return EnsureLocation(w.loc) }

// Contains reports whether the timestamp falls within [start, end).
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.start) && ts.Before(w.end)
}

// TruncateToDay normalizes the timestamp to midnight in the provided zone.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	loc = EnsureLocation(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayKey formats the timestamp as a calendar date in the provided zone.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(EnsureLocation(loc)).Format(DayLayout)
}
