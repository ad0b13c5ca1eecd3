// Package schedule turns scraped courses plus the user's per-section
// choices into the activities they actually attend, projects them onto
// dates, and lays them out on an hourly grid.
package schedule

import (
	"sort"

	appLog "uctimetable/internal/log"
	"uctimetable/internal/model"
)

// SelectionKey addresses one section of one course.
type SelectionKey struct {
	Course  string
	Section string
}

// Selection maps a section to the chosen offering as a 1-based index
// into the section's activity list. Missing entries default to 1.
type Selection map[SelectionKey]int

// Entry is one resolved activity: the single offering the user attends
// for a given course section.
type Entry struct {
	Course  *model.Course
	Section string
	Act     model.Activity
}

// Resolve picks one activity per section per course. A configured index
// that is out of range for the section falls back to the first offering
// instead of failing the run: one bad config line must not cost the
// user their whole timetable. Resolution is deterministic (course and
// section order are preserved) and idempotent.
func Resolve(courses []*model.Course, sel Selection) []Entry {
	var entries []Entry

	for _, course := range courses {
		for _, section := range course.Sections {
			if len(section.Activities) == 0 {
				continue
			}

			idx := 1
			if chosen, ok := sel[SelectionKey{Course: course.Title, Section: section.Name}]; ok {
				idx = chosen
			}
			if idx < 1 || idx > len(section.Activities) {
				appLog.Warn("selection index out of range, using first offering",
					"course", course.Title,
					"section", section.Name,
					"index", idx,
					"offerings", len(section.Activities),
				)
				idx = 1
			}

			entries = append(entries, Entry{
				Course:  course,
				Section: section.Name,
				Act:     section.Activities[idx-1],
			})
		}
	}

	return entries
}

// sortEntries applies the activity total order with course title as the
// final tie-break, keeping output deterministic when two courses hold
// simultaneous classes.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Act.Compare(entries[j].Act); c != 0 {
			return c < 0
		}
		return entries[i].Course.Title < entries[j].Course.Title
	})
}
