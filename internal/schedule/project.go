package schedule

import (
	"time"

	"uctimetable/internal/model"
)

// ActivitiesOn filters resolved entries to those occurring on the given
// date, ordered by the activity total order (weekday, start, id) with
// course title as the final tie-break.
func ActivitiesOn(entries []Entry, date time.Time) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Act.OccursOn(date) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

// NextAfter returns the next class(es) after the given instant on that
// instant's date: the full group of entries sharing the earliest start
// time strictly after the instant's time of day. Returning the whole
// group (rather than an arbitrary pick) surfaces genuine clashes when
// two courses start simultaneously. Empty when nothing is left today.
func NextAfter(entries []Entry, at time.Time) []Entry {
	now := model.ClockTime{Hour: at.Hour(), Minute: at.Minute()}

	var upcoming []Entry
	for _, e := range ActivitiesOn(entries, at) {
		if e.Act.Start.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) == 0 {
		return nil
	}

	earliest := upcoming[0].Act.Start
	var group []Entry
	for _, e := range upcoming {
		if e.Act.Start == earliest {
			group = append(group, e)
		}
	}
	return group
}

// Clashes reports whether two resolved entries collide: same weekday,
// overlapping time ranges, and different courses. Overlapping
// alternatives within one course are mutually exclusive offerings, not
// clashes.
func Clashes(a, b Entry) bool {
	if a.Course.Key() == b.Course.Key() {
		return false
	}
	return a.Act.Overlaps(b.Act)
}
