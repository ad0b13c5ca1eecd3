package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Activity identifiers on course pages follow one of two grammars:
//
//	<int>          a plain offering id, e.g. "01"
//	<int>-P<int>   a sub-allocation targeting students from a previous
//	               offering, e.g. "01-P1"
var idPattern = regexp.MustCompile(`^(\d+)(?:-P(\d+))?$`)

// Location cells are "<place> (<dates>)" with the date part optional.
var locationPattern = regexp.MustCompile(`^(.+?)?\((.+?)\)?$`)

// ActivityID identifies one offering of a section. Primary groups
// alternative offerings; Sub distinguishes targeted sub-allocations.
type ActivityID struct {
	Primary int
	Sub     int
	HasSub  bool
}

// ParseActivityID parses the two accepted id grammars.
func ParseActivityID(s string) (ActivityID, error) {
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return ActivityID{}, fmt.Errorf("invalid activity id %q", s)
	}
	var id ActivityID
	id.Primary, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		id.Sub, _ = strconv.Atoi(m[2])
		id.HasSub = true
	}
	return id, nil
}

// Compare orders ids by primary, with plain ids before sub-allocations
// of the same primary.
func (id ActivityID) Compare(other ActivityID) int {
	if id.Primary != other.Primary {
		return id.Primary - other.Primary
	}
	if id.HasSub != other.HasSub {
		if id.HasSub {
			return 1
		}
		return -1
	}
	return id.Sub - other.Sub
}

func (id ActivityID) String() string {
	if id.HasSub {
		return fmt.Sprintf("%02d-P%d", id.Primary, id.Sub)
	}
	return fmt.Sprintf("%02d", id.Primary)
}

// Location is one place a class may occur in, optionally constrained to
// a set of date intervals. The institution sometimes moves a class mid
// semester, so an activity can carry several of these.
type Location struct {
	Place string
	Valid []Interval
}

// ParseLocation parses a location cell line. A line with no
// parenthesized date part yields a location valid for every date.
func ParseLocation(year int, s string) Location {
	m := locationPattern.FindStringSubmatch(s)
	if m == nil {
		return Location{Place: strings.TrimSpace(s)}
	}
	intervals, err := ParseDayIntervals(year, m[2])
	if err != nil {
		// An unparseable date part is treated as descriptive text
		// rather than a constraint. "C2 (south entrance)" stays a
		// location valid for every date.
		return Location{Place: strings.TrimSpace(s)}
	}
	return Location{Place: strings.TrimSpace(m[1]), Valid: intervals}
}

// ValidOn reports whether the location applies on the given date.
func (l Location) ValidOn(date time.Time) bool {
	return InIntervals(date, l.Valid)
}

func (l Location) Equal(other Location) bool {
	return l.Place == other.Place && IntervalsEqual(l.Valid, other.Valid)
}

// Activity is one scheduled occurrence type (lecture/tutorial/lab): a
// row on a course page. Weeks constrains when the activity runs at all,
// independently of any per-location date constraints.
type Activity struct {
	ID        ActivityID
	Day       Weekday
	Start     ClockTime
	End       ClockTime
	Locations []Location
	Weeks     []Interval
}

// OccursOn reports whether the activity runs on the given date: the
// weekday must match and the date must fall in the validity weeks.
func (a Activity) OccursOn(date time.Time) bool {
	day, ok := WeekdayOf(date)
	if !ok {
		return false
	}
	return day == a.Day && InIntervals(date, a.Weeks)
}

// LocationOn resolves which location applies on the given date: the
// first listed location whose own intervals contain it. ok=false means
// the location is unknown for that date, which callers render as such
// rather than treating as an error.
func (a Activity) LocationOn(date time.Time) (Location, bool) {
	for _, loc := range a.Locations {
		if loc.ValidOn(date) {
			return loc, true
		}
	}
	return Location{}, false
}

// Overlaps reports whether two activities share a weekday and their
// time ranges intersect.
func (a Activity) Overlaps(other Activity) bool {
	if a.Day != other.Day {
		return false
	}
	return a.Start.Before(other.End) && other.Start.Before(a.End)
}

// Compare defines the total order used for clash detection and grid
// layout: weekday, then start time, then id so that simultaneous
// activities still sort deterministically.
func (a Activity) Compare(other Activity) int {
	if a.Day != other.Day {
		return int(a.Day) - int(other.Day)
	}
	if d := a.Start.Minutes() - other.Start.Minutes(); d != 0 {
		return d
	}
	return a.ID.Compare(other.ID)
}

// Equal reports full value equality: id, weekday, time range and
// locations all match.
func (a Activity) Equal(other Activity) bool {
	if a.ID != other.ID || a.Day != other.Day || a.Start != other.Start || a.End != other.End {
		return false
	}
	if len(a.Locations) != len(other.Locations) {
		return false
	}
	for i := range a.Locations {
		if !a.Locations[i].Equal(other.Locations[i]) {
			return false
		}
	}
	return true
}
