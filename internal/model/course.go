package model

import (
	"fmt"
	"net/url"
)

// Section is a named group of alternative offerings the student picks
// one of, e.g. "Lecture A" with streams 01 and 02.
type Section struct {
	Name       string
	Activities []Activity
}

// CourseKey is the identity of a course occurrence. Config-declared
// courses and cached courses reconcile on this key.
type CourseKey struct {
	Title    string
	Year     int
	Semester int
}

func (k CourseKey) String() string {
	return fmt.Sprintf("%s %dS%d", k.Title, k.Year, k.Semester)
}

// Course holds everything scraped for one course occurrence. Sections
// keep page order so output stays deterministic. The fetch pipeline
// replaces Sections wholesale; nothing ever partial-merges into it.
type Course struct {
	Title    string
	Year     int
	Semester int
	Sections []Section
}

func (c *Course) Key() CourseKey {
	return CourseKey{Title: c.Title, Year: c.Year, Semester: c.Semester}
}

// URL builds the course detail page address. The institution keys
// occurrences as e.g. "18S1(C)" for a 2018 semester-one course.
func (c *Course) URL(base string) string {
	occurrence := fmt.Sprintf("%dS%d(C)", c.Year%100, c.Semester)
	q := url.Values{}
	q.Set("course", c.Title)
	q.Set("occurrence", occurrence)
	q.Set("year", fmt.Sprintf("%d", c.Year))
	return base + "?" + q.Encode()
}

// Section returns the named section, if present.
func (c *Course) Section(name string) (*Section, bool) {
	for i := range c.Sections {
		if c.Sections[i].Name == name {
			return &c.Sections[i], true
		}
	}
	return nil, false
}

// HasActivities reports whether the course has been populated by a
// fetch (or restored from cache).
func (c *Course) HasActivities() bool {
	for _, s := range c.Sections {
		if len(s.Activities) > 0 {
			return true
		}
	}
	return false
}

// Equal compares two courses including all nested sections, activities
// and location intervals. Used by the cache round-trip tests and the
// reconcile logic.
func (c *Course) Equal(other *Course) bool {
	if c.Key() != other.Key() || len(c.Sections) != len(other.Sections) {
		return false
	}
	for i := range c.Sections {
		a, b := c.Sections[i], other.Sections[i]
		if a.Name != b.Name || len(a.Activities) != len(b.Activities) {
			return false
		}
		for j := range a.Activities {
			if !a.Activities[j].Equal(b.Activities[j]) {
				return false
			}
			if !IntervalsEqual(a.Activities[j].Weeks, b.Activities[j].Weeks) {
				return false
			}
		}
	}
	return true
}
