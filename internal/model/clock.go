package model

import (
	"fmt"
	"strings"
	"time"
)

// ClockTime is a naive time of day. The timetable has no timezone
// concept; everything is institution-local wall time.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24-hour).
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseClockRange parses "HH:MM-HH:MM" and requires start < end.
func ParseClockRange(s string) (start, end ClockTime, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return ClockTime{}, ClockTime{}, fmt.Errorf("clock range %q: want HH:MM-HH:MM", s)
	}
	if start, err = ParseClockTime(parts[0]); err != nil {
		return ClockTime{}, ClockTime{}, err
	}
	if end, err = ParseClockTime(parts[1]); err != nil {
		return ClockTime{}, ClockTime{}, err
	}
	if !start.Before(end) {
		return ClockTime{}, ClockTime{}, fmt.Errorf("clock range %q: start not before end", s)
	}
	return start, end, nil
}

// Minutes returns the time as minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

func (c ClockTime) After(other ClockTime) bool {
	return c.Minutes() > other.Minutes()
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Weekday is a contiguous institution weekday index, 0=Monday through
// 4=Friday. The source site never publishes weekend rows.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// NumWeekdays is the size of the institution's teaching week.
const NumWeekdays = 5

var weekdayNames = [NumWeekdays]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ParseWeekdayName maps a day-name cell to its index. Weekend names are
// rejected: the institution has no weekend teaching and a weekend row
// indicates page drift.
func ParseWeekdayName(name string) (Weekday, error) {
	trimmed := strings.TrimSpace(name)
	for i, n := range weekdayNames {
		if strings.EqualFold(trimmed, n) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// WeekdayOf converts a calendar date to the institution index, or
// ok=false for weekend dates.
func WeekdayOf(date time.Time) (Weekday, bool) {
	switch date.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	default:
		return 0, false
	}
}

func (w Weekday) String() string {
	if w < 0 || int(w) >= NumWeekdays {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}
