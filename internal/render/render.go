// Package render formats resolved timetable data for the terminal. It
// is cosmetic only: it never fails on missing locations (rendered as
// "unknown location") and colour problems degrade to plain text.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"uctimetable/internal/model"
	"uctimetable/internal/schedule"
)

// ClashMarker flags cells holding overlapping classes from different
// courses.
const ClashMarker = "[CLASH]"

// ColourLookup maps a course title to its configured colour name.
type ColourLookup func(title string) string

var colourByName = map[string]*color.Color{
	"black":   color.New(color.FgBlack),
	"red":     color.New(color.FgRed),
	"green":   color.New(color.FgGreen),
	"yellow":  color.New(color.FgYellow),
	"blue":    color.New(color.FgBlue),
	"magenta": color.New(color.FgMagenta),
	"cyan":    color.New(color.FgCyan),
	"white":   color.New(color.FgWhite),
}

// paint colours a course title; unknown or empty colour names degrade
// to plain text.
func paint(name, s string) string {
	c, ok := colourByName[strings.ToLower(name)]
	if !ok {
		return s
	}
	return c.Sprint(s)
}

// ActivityLine formats one resolved activity for list output, resolving
// the location that applies on the given date.
func ActivityLine(e schedule.Entry, date time.Time, colours ColourLookup) string {
	place := "unknown location"
	if loc, ok := e.Act.LocationOn(date); ok {
		place = loc.Place
	}
	title := paint(colours(e.Course.Title), e.Course.Title)
	return fmt.Sprintf("%s %s @ %s :: %s - %s",
		title, e.Section, place, e.Act.Start, e.Act.End)
}

// DayList prints the ordered activities of one date, one line each.
func DayList(w io.Writer, entries []schedule.Entry, date time.Time, colours ColourLookup) {
	fmt.Fprintf(w, "Showing timetable for %s, %s\n", date.Weekday(), model.DateOnly(date).Format("2006-01-02"))
	if len(entries) == 0 {
		fmt.Fprintln(w, "No classes.")
		return
	}
	for _, e := range entries {
		fmt.Fprintln(w, ActivityLine(e, date, colours))
	}
}

// NextList prints the next class(es): more than one line when two
// courses start simultaneously, which is a genuine clash worth seeing.
func NextList(w io.Writer, entries []schedule.Entry, at time.Time, colours ColourLookup) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No more classes today.")
		return
	}
	if len(entries) > 1 {
		fmt.Fprintf(w, "%s %d classes start at %s:\n", ClashMarker, len(entries), entries[0].Act.Start)
	}
	for _, e := range entries {
		fmt.Fprintln(w, ActivityLine(e, at, colours))
	}
}

// TimeToNext prints how long until the next class starts.
func TimeToNext(w io.Writer, entries []schedule.Entry, at time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No more classes today.")
		return
	}
	start := entries[0].Act.Start
	startAt := time.Date(at.Year(), at.Month(), at.Day(), start.Hour, start.Minute, 0, 0, at.Location())
	fmt.Fprintf(w, "%s until next class\n", startAt.Sub(at).Round(time.Minute))
}

// WeekTable renders the weekly grid: weekday rows against hourly bins.
func WeekTable(w io.Writer, g schedule.Grid, week schedule.Week) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Day"}, g.Bins()...))
	table.SetRowLine(true)
	table.SetAutoWrapText(false)

	for d := 0; d < model.NumWeekdays; d++ {
		row := []string{fmt.Sprintf("%s %s", model.Weekday(d), week.Days[d].Format("01-02"))}
		for _, cell := range week.Rows[d] {
			row = append(row, cellText(cell))
		}
		table.Append(row)
	}

	table.Render()
}

// cellText joins a bin's entries; entries from different courses in the
// same bin get the clash marker.
func cellText(cell schedule.Cell) string {
	if len(cell.Entries) == 0 {
		return ""
	}
	labels := make([]string, 0, len(cell.Entries))
	for _, e := range cell.Entries {
		labels = append(labels, fmt.Sprintf("%s %s", e.Course.Title, e.Section))
	}
	text := strings.Join(labels, " / ")
	if cell.Clash {
		text = ClashMarker + " " + text
	}
	return text
}
