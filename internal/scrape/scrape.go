// Package scrape turns a course detail page into typed timetable
// records. Row-level failures reject only that row; the absence of the
// detail table itself is surfaced as a structural error so schema
// drift on the source site never silently yields an empty timetable.
package scrape

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"uctimetable/internal/model"
)

// ErrNoDetailTable indicates the expected course detail table was not
// present in the page, e.g. an unknown course code or site redesign.
var ErrNoDetailTable = errors.New("scrape: course detail table not found")

// detailTable is where the institution renders the activity rows.
const detailTable = "table#RepeatTable"

// ParseError rejects a single activity row. The rest of the course
// still loads.
type ParseError struct {
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scrape: row in section %q: %v", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError means a course page did not contain the structure we
// expect. It is per-course: other courses in the run still proceed.
type FetchError struct {
	Course string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("scrape: course %s: %v", e.Course, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseCoursePage extracts the sections and activity rows from a course
// detail page. Rows that fail to parse are returned as ParseErrors in
// rowErrs; a page missing the detail table fails outright with
// ErrNoDetailTable.
func ParseCoursePage(r io.Reader, year int) (sections []model.Section, rowErrs []error, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("scrape: %w", err)
	}

	table := doc.Find(detailTable)
	if table.Length() == 0 {
		return nil, nil, ErrNoDetailTable
	}

	// Each tbody groups one section: a header row naming it, followed
	// by one datarow per activity offering.
	table.Find("tbody").Each(func(_ int, tb *goquery.Selection) {
		name := sectionName(tb)
		sec := model.Section{Name: name}

		tb.Find("tr.datarow").Each(func(_ int, row *goquery.Selection) {
			act, rerr := parseRow(row, year)
			if rerr != nil {
				rowErrs = append(rowErrs, &ParseError{Section: name, Err: rerr})
				return
			}
			sec.Activities = append(sec.Activities, act)
		})

		if name == "" && len(sec.Activities) == 0 {
			return
		}
		sections = append(sections, sec)
	})

	return sections, rowErrs, nil
}

// sectionName is the text of the first non-data row in a tbody.
func sectionName(tb *goquery.Selection) string {
	name := ""
	tb.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if tr.HasClass("datarow") {
			return true
		}
		name = strings.Join(strings.Fields(tr.Text()), " ")
		return false
	})
	return name
}

// parseRow builds one Activity from a datarow. The Location column may
// be blank (location unknown); every other column is required.
func parseRow(row *goquery.Selection, year int) (model.Activity, error) {
	var act model.Activity

	idCell, ok := cell(row, "Activity")
	if !ok {
		return act, errors.New("missing Activity column")
	}
	dayCell, ok := cell(row, "Day")
	if !ok {
		return act, errors.New("missing Day column")
	}
	timeCell, ok := cell(row, "Time")
	if !ok {
		return act, errors.New("missing Time column")
	}
	weeksCell, ok := cell(row, "Weeks")
	if !ok {
		return act, errors.New("missing Weeks column")
	}

	id, err := model.ParseActivityID(strings.TrimSpace(idCell.Text()))
	if err != nil {
		return act, err
	}
	day, err := model.ParseWeekdayName(dayCell.Text())
	if err != nil {
		return act, err
	}
	start, end, err := model.ParseClockRange(strings.TrimSpace(timeCell.Text()))
	if err != nil {
		return act, err
	}

	var weeks []model.Interval
	for _, line := range cellLines(weeksCell) {
		iv, werr := model.ParseWeekInterval(year, line)
		if werr != nil {
			return act, werr
		}
		weeks = append(weeks, iv)
	}

	var locations []model.Location
	if locCell, ok := cell(row, "Location"); ok {
		for _, line := range cellLines(locCell) {
			locations = append(locations, model.ParseLocation(year, line))
		}
	}

	act = model.Activity{
		ID:        id,
		Day:       day,
		Start:     start,
		End:       end,
		Locations: locations,
		Weeks:     weeks,
	}
	return act, nil
}

func cell(row *goquery.Selection, title string) (*goquery.Selection, bool) {
	s := row.Find(fmt.Sprintf(`td[data-title=%q]`, title))
	return s, s.Length() > 0
}

// cellLines flattens a cell into its visual lines: <br> elements break
// lines, blank lines are dropped. The site packs multiple locations and
// multiple week intervals into single cells this way.
func cellLines(sel *goquery.Selection) []string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
