// Package export writes the resolved personal timetable to external
// formats: CSV rows for spreadsheets and iCalendar for calendar apps.
package export

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"uctimetable/internal/model"
	"uctimetable/internal/schedule"
)

// Row is one resolved activity flattened for CSV output.
type Row struct {
	Course    string `csv:"course"`
	Section   string `csv:"section"`
	Activity  string `csv:"activity"`
	Day       string `csv:"day"`
	Start     string `csv:"start"`
	End       string `csv:"end"`
	Locations string `csv:"locations"`
	Weeks     string `csv:"weeks"`
}

// Rows flattens resolved entries into CSV rows.
func Rows(entries []schedule.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Course:    e.Course.Title,
			Section:   e.Section,
			Activity:  e.Act.ID.String(),
			Day:       e.Act.Day.String(),
			Start:     e.Act.Start.String(),
			End:       e.Act.End.String(),
			Locations: joinLocations(e.Act.Locations),
			Weeks:     joinIntervals(e.Act.Weeks),
		})
	}
	return rows
}

// WriteCSV writes the resolved timetable as CSV with a header row.
func WriteCSV(w io.Writer, entries []schedule.Entry) error {
	rows := Rows(entries)
	return gocsv.Marshal(&rows, w)
}

func joinLocations(locs []model.Location) string {
	parts := make([]string, 0, len(locs))
	for _, l := range locs {
		if len(l.Valid) == 0 {
			parts = append(parts, l.Place)
			continue
		}
		parts = append(parts, l.Place+" ("+joinIntervals(l.Valid)+")")
	}
	return strings.Join(parts, "; ")
}

func joinIntervals(ivs []model.Interval) string {
	parts := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		parts = append(parts, iv.String())
	}
	return strings.Join(parts, ", ")
}
