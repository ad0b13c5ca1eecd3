package schedule

import (
	"fmt"
	"time"

	"uctimetable/internal/model"
)

// Grid buckets a day's activities into fixed hourly bins for tabular
// rendering. Activities outside [StartHour, EndHour) are omitted.
type Grid struct {
	StartHour int
	EndHour   int
}

// Cell is the content of one day/hour bin. Clash is set when entries
// from different courses share the bin.
type Cell struct {
	Entries []Entry
	Clash   bool
}

// Week is the full weekly layout: one row per institution weekday, one
// cell per hourly bin.
type Week struct {
	// Monday is the date of the week's first day.
	Monday time.Time
	// Days holds the dates of the week, Monday..Friday.
	Days [model.NumWeekdays]time.Time
	// Rows[day][bin] mirrors Days and Bins().
	Rows [model.NumWeekdays][]Cell
}

// Bins returns the column headers, e.g. "08:00-09:00".
func (g Grid) Bins() []string {
	out := make([]string, 0, g.EndHour-g.StartHour)
	for h := g.StartHour; h < g.EndHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00-%02d:00", h, h+1))
	}
	return out
}

// LayOutDay places the given (already filtered and ordered) day's
// entries into hourly bins. An activity occupies every bin its time
// range intersects: a 09:00-11:00 class fills both the 09 and 10 bins.
func (g Grid) LayOutDay(entries []Entry) []Cell {
	cells := make([]Cell, g.EndHour-g.StartHour)

	for _, e := range entries {
		for h := g.StartHour; h < g.EndHour; h++ {
			binStart := model.ClockTime{Hour: h}
			binEnd := model.ClockTime{Hour: h + 1}
			if !intersects(e.Act.Start, e.Act.End, binStart, binEnd) {
				continue
			}
			cell := &cells[h-g.StartHour]
			for _, prior := range cell.Entries {
				if Clashes(prior, e) {
					cell.Clash = true
				}
			}
			cell.Entries = append(cell.Entries, e)
		}
	}

	return cells
}

// LayOutWeek projects the resolved entries over the week containing the
// given date (weekend dates roll forward to the following Monday).
func (g Grid) LayOutWeek(entries []Entry, of time.Time) Week {
	week := Week{Monday: mondayOf(of)}
	for d := 0; d < model.NumWeekdays; d++ {
		date := week.Monday.AddDate(0, 0, d)
		week.Days[d] = date
		week.Rows[d] = g.LayOutDay(ActivitiesOn(entries, date))
	}
	return week
}

func intersects(aStart, aEnd, bStart, bEnd model.ClockTime) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// mondayOf returns the Monday of the week containing date; Saturday and
// Sunday map to the next Monday so "show me the week" on a weekend
// shows the upcoming one.
func mondayOf(date time.Time) time.Time {
	d := model.DateOnly(date)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d.AddDate(0, 0, -(int(d.Weekday()) - 1))
	}
}
