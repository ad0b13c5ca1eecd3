package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "uctimetable/internal/log"
	"uctimetable/internal/model"
	"uctimetable/internal/schedule"
)

// WriteICS writes the resolved timetable as an iCalendar document. Each
// weekly validity interval of each activity is expanded into dated
// VEVENTs, so mid-semester gaps (term breaks, cancelled weeks) simply
// produce no events and per-date location moves resolve correctly.
func WriteICS(w io.Writer, entries []schedule.Entry) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	now := time.Now().UTC()

	for _, e := range entries {
		for _, date := range occurrenceDates(e.Act, e.Course.Year) {
			addEvent(cal, e, date, now)
		}
	}

	return cal.SerializeTo(w)
}

// occurrenceDates lists every date the activity runs on, walking each
// validity interval with a weekly recurrence rule. An activity with no
// validity intervals is valid all year, so it is bounded to the
// course's calendar year.
func occurrenceDates(act model.Activity, year int) []time.Time {
	intervals := act.Weeks
	if len(intervals) == 0 {
		yearRange, err := model.NewRange(
			time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		)
		if err != nil {
			return nil
		}
		intervals = []model.Interval{yearRange}
	}

	var dates []time.Time
	for _, iv := range intervals {
		start, end := iv.Start, iv.End
		if iv.IsInstant() {
			end = start
		}

		first := firstOnOrAfter(start, act.Day)
		if first.After(end) {
			continue
		}

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:    rrule.WEEKLY,
			Dtstart: first,
			Until:   end.Add(24*time.Hour - time.Second),
		})
		if err != nil {
			appLog.Error("recurrence rule construction failed", err, "activity", act.ID.String())
			continue
		}
		dates = append(dates, r.All()...)
	}
	return dates
}

// firstOnOrAfter returns the first date on or after start that falls on
// the given institution weekday.
func firstOnOrAfter(start time.Time, day model.Weekday) time.Time {
	d := model.DateOnly(start)
	for i := 0; i < 7; i++ {
		if wd, ok := model.WeekdayOf(d); ok && wd == day {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func addEvent(cal *ical.Calendar, e schedule.Entry, date time.Time, stamp time.Time) {
	uid := fmt.Sprintf("%s-%s-%s-%s@uctimetable",
		e.Course.Title, sanitize(e.Section), e.Act.ID, date.Format("20060102"))

	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(stamp)
	ev.SetSummary(fmt.Sprintf("%s %s", e.Course.Title, e.Section))
	ev.SetStartAt(withClock(date, e.Act.Start))
	ev.SetEndAt(withClock(date, e.Act.End))
	if loc, ok := e.Act.LocationOn(date); ok {
		ev.SetLocation(loc.Place)
	}
}

func withClock(date time.Time, c model.ClockTime) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, time.Local)
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			r = '-'
		}
		out = append(out, r)
	}
	return string(out)
}
