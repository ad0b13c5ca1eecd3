package model

import (
	"fmt"
	"strings"
	"time"
)

// An Interval is a validity window over calendar dates. It is either an
// instant (a single date) or an inclusive range. Times of day are not
// part of an interval: an end date stays valid through 23:59:59, which
// the date-only comparison below gives us for free.
type Interval struct {
	Start time.Time
	// End is the zero time for an instant interval.
	End time.Time
}

// NewInstant returns an interval covering exactly one date.
func NewInstant(on time.Time) Interval {
	return Interval{Start: DateOnly(on)}
}

// NewRange returns an inclusive date range. Start must not be after
// end. A one-day range normalizes to an instant, so the two spellings
// of a single date are the same value.
func NewRange(start, end time.Time) (Interval, error) {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return Interval{}, fmt.Errorf("interval end %s before start %s",
			e.Format(dateLayout), s.Format(dateLayout))
	}
	if e.Equal(s) {
		return Interval{Start: s}, nil
	}
	return Interval{Start: s, End: e}, nil
}

// IsInstant reports whether the interval covers a single date.
func (iv Interval) IsInstant() bool {
	return iv.End.IsZero()
}

// Contains reports whether the given date falls within the interval.
// Both boundary dates of a range are included.
func (iv Interval) Contains(date time.Time) bool {
	d := DateOnly(date)
	if iv.IsInstant() {
		return d.Equal(iv.Start)
	}
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Equal reports whether two intervals cover the same dates.
func (iv Interval) Equal(other Interval) bool {
	if iv.IsInstant() != other.IsInstant() {
		return false
	}
	if !iv.Start.Equal(other.Start) {
		return false
	}
	return iv.IsInstant() || iv.End.Equal(other.End)
}

func (iv Interval) String() string {
	if iv.IsInstant() {
		return iv.Start.Format(dateLayout)
	}
	return iv.Start.Format(dateLayout) + " - " + iv.End.Format(dateLayout)
}

// InIntervals reports whether date falls inside any of the given
// intervals. An empty list means "always valid".
func InIntervals(date time.Time, intervals []Interval) bool {
	if len(intervals) == 0 {
		return true
	}
	for _, iv := range intervals {
		if iv.Contains(date) {
			return true
		}
	}
	return false
}

// IntervalsEqual compares two interval lists element-wise.
func IntervalsEqual(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

const dateLayout = "2006-01-02"

// DateOnly truncates a time to its calendar date. All interval math is
// done on these normalized midnight-UTC values so comparisons never
// depend on the wall clock or zone of the query time.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseWeekInterval parses the "Weeks" column form used on course
// pages, e.g. "2 Apr - 3 Apr" or a bare "2 Apr" for a single week. The
// source omits the year, so it is anchored to the course's year.
func ParseWeekInterval(year int, s string) (Interval, error) {
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return Interval{}, fmt.Errorf("week interval %q: too many dates", s)
	}
	dates := make([]time.Time, 0, 2)
	for _, p := range parts {
		t, err := time.Parse("2 Jan", strings.TrimSpace(p))
		if err != nil {
			return Interval{}, fmt.Errorf("week interval %q: %w", s, err)
		}
		dates = append(dates, time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	}
	if len(dates) == 1 {
		return NewInstant(dates[0]), nil
	}
	return NewRange(dates[0], dates[1])
}

// ParseDayInterval parses a location-column date constraint, e.g.
// "28/3" (instant) or "27/2-27/3" (range), anchored to the given year.
func ParseDayInterval(year int, s string) (Interval, error) {
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return Interval{}, fmt.Errorf("day interval %q: too many dates", s)
	}
	dates := make([]time.Time, 0, 2)
	for _, p := range parts {
		t, err := time.Parse("2/1", strings.TrimSpace(p))
		if err != nil {
			return Interval{}, fmt.Errorf("day interval %q: %w", s, err)
		}
		dates = append(dates, time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	}
	if len(dates) == 1 {
		return NewInstant(dates[0]), nil
	}
	return NewRange(dates[0], dates[1])
}

// ParseDayIntervals parses a comma-separated list of day intervals,
// e.g. "27/2-27/3, 24/4-29/5" or "28/3".
func ParseDayIntervals(year int, s string) ([]Interval, error) {
	var out []Interval
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		iv, err := ParseDayInterval(year, part)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}
