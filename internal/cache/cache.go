// Package cache persists parsed courses between runs so the source
// site is only re-fetched when forced or when the configured refresh
// schedule has ticked over.
//
// The on-disk format is versioned JSON. Intervals are encoded as a
// tagged variant ("instant" or "range") and decoded with a single
// exhaustive switch; unknown kinds or versions are decode errors, never
// silent drops.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	appLog "uctimetable/internal/log"
	"uctimetable/internal/model"
)

// Version identifies the current cache document schema.
const Version = 1

const dateLayout = "2006-01-02"

// ErrVersionMismatch means the cache was written by an incompatible
// schema; callers treat it like a missing cache and re-fetch.
var ErrVersionMismatch = errors.New("cache: unsupported document version")

type document struct {
	Version int            `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Courses []courseRecord `json:"courses"`
}

type courseRecord struct {
	Title    string          `json:"title"`
	Year     int             `json:"year"`
	Semester int             `json:"semester"`
	Sections []sectionRecord `json:"sections"`
}

type sectionRecord struct {
	Name       string           `json:"name"`
	Activities []activityRecord `json:"activities"`
}

type activityRecord struct {
	ID        string           `json:"id"`
	Day       int              `json:"day"`
	Start     string           `json:"start"`
	End       string           `json:"end"`
	Locations []locationRecord `json:"locations"`
	Weeks     []intervalRecord `json:"weeks"`
}

type locationRecord struct {
	Place string           `json:"place"`
	Valid []intervalRecord `json:"valid,omitempty"`
}

// intervalRecord is the tagged-variant encoding of model.Interval.
type intervalRecord struct {
	Kind string `json:"kind"`
	On   string `json:"on,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Load reads the cache file. A missing file is not an error: it returns
// an empty course list and a zero SavedAt.
func Load(path string) (courses []*model.Course, savedAt time.Time, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("cache: %w", err)
	}
	if doc.Version != Version {
		return nil, time.Time{}, fmt.Errorf("%w: %d", ErrVersionMismatch, doc.Version)
	}

	courses = make([]*model.Course, 0, len(doc.Courses))
	for _, cr := range doc.Courses {
		course, err := decodeCourse(cr)
		if err != nil {
			return nil, time.Time{}, err
		}
		courses = append(courses, course)
	}
	return courses, doc.SavedAt, nil
}

// Save writes the cache atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, courses []*model.Course) error {
	if path == "" {
		return errors.New("cache: path is empty")
	}

	doc := document{
		Version: Version,
		SavedAt: time.Now().UTC(),
		Courses: make([]courseRecord, 0, len(courses)),
	}
	for _, c := range courses {
		doc.Courses = append(doc.Courses, encodeCourse(c))
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timetable-cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Reconcile merges cached courses into the config-declared set. Config
// always wins on membership: a cached course whose key no longer
// appears in the config is dropped, and a declared course missing from
// the cache comes back empty (to be fetched). Declared order is kept.
func Reconcile(declared, cached []*model.Course) []*model.Course {
	byKey := make(map[model.CourseKey]*model.Course, len(cached))
	for _, c := range cached {
		byKey[c.Key()] = c
	}

	out := make([]*model.Course, 0, len(declared))
	for _, c := range declared {
		if hit, ok := byKey[c.Key()]; ok && hit.HasActivities() {
			out = append(out, hit)
			continue
		}
		out = append(out, c)
	}

	for _, c := range cached {
		if _, ok := findKey(declared, c.Key()); !ok {
			appLog.Debug("dropping cached course absent from config", "course", c.Key().String())
		}
	}
	return out
}

func findKey(courses []*model.Course, key model.CourseKey) (*model.Course, bool) {
	for _, c := range courses {
		if c.Key() == key {
			return c, true
		}
	}
	return nil, false
}

// Stale reports whether the cache should be refreshed: true when the
// configured cron schedule has ticked at least once since the cache was
// written. An empty schedule means the cache never goes stale on its
// own (only --force refetches).
func Stale(savedAt time.Time, schedule string, now time.Time) (bool, error) {
	if savedAt.IsZero() {
		return true, nil
	}
	if schedule == "" {
		return false, nil
	}
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return false, fmt.Errorf("cache: refresh schedule: %w", err)
	}
	next := sched.Next(savedAt)
	return !next.After(now), nil
}

func encodeCourse(c *model.Course) courseRecord {
	rec := courseRecord{
		Title:    c.Title,
		Year:     c.Year,
		Semester: c.Semester,
		Sections: make([]sectionRecord, 0, len(c.Sections)),
	}
	for _, s := range c.Sections {
		sr := sectionRecord{Name: s.Name, Activities: make([]activityRecord, 0, len(s.Activities))}
		for _, a := range s.Activities {
			sr.Activities = append(sr.Activities, encodeActivity(a))
		}
		rec.Sections = append(rec.Sections, sr)
	}
	return rec
}

func encodeActivity(a model.Activity) activityRecord {
	rec := activityRecord{
		ID:    a.ID.String(),
		Day:   int(a.Day),
		Start: a.Start.String(),
		End:   a.End.String(),
	}
	for _, l := range a.Locations {
		rec.Locations = append(rec.Locations, locationRecord{
			Place: l.Place,
			Valid: encodeIntervals(l.Valid),
		})
	}
	rec.Weeks = encodeIntervals(a.Weeks)
	return rec
}

func encodeIntervals(ivs []model.Interval) []intervalRecord {
	out := make([]intervalRecord, 0, len(ivs))
	for _, iv := range ivs {
		if iv.IsInstant() {
			out = append(out, intervalRecord{Kind: "instant", On: iv.Start.Format(dateLayout)})
			continue
		}
		out = append(out, intervalRecord{
			Kind: "range",
			From: iv.Start.Format(dateLayout),
			To:   iv.End.Format(dateLayout),
		})
	}
	return out
}

func decodeCourse(rec courseRecord) (*model.Course, error) {
	course := &model.Course{
		Title:    rec.Title,
		Year:     rec.Year,
		Semester: rec.Semester,
		Sections: make([]model.Section, 0, len(rec.Sections)),
	}
	for _, sr := range rec.Sections {
		sec := model.Section{Name: sr.Name}
		for _, ar := range sr.Activities {
			act, err := decodeActivity(ar)
			if err != nil {
				return nil, fmt.Errorf("cache: course %s: %w", course.Key(), err)
			}
			sec.Activities = append(sec.Activities, act)
		}
		course.Sections = append(course.Sections, sec)
	}
	return course, nil
}

func decodeActivity(rec activityRecord) (model.Activity, error) {
	var act model.Activity

	id, err := model.ParseActivityID(rec.ID)
	if err != nil {
		return act, err
	}
	if rec.Day < 0 || rec.Day >= model.NumWeekdays {
		return act, fmt.Errorf("weekday index %d out of range", rec.Day)
	}
	start, err := model.ParseClockTime(rec.Start)
	if err != nil {
		return act, err
	}
	end, err := model.ParseClockTime(rec.End)
	if err != nil {
		return act, err
	}

	act = model.Activity{ID: id, Day: model.Weekday(rec.Day), Start: start, End: end}

	for _, lr := range rec.Locations {
		valid, err := decodeIntervals(lr.Valid)
		if err != nil {
			return act, err
		}
		act.Locations = append(act.Locations, model.Location{Place: lr.Place, Valid: valid})
	}
	act.Weeks, err = decodeIntervals(rec.Weeks)
	return act, err
}

func decodeIntervals(recs []intervalRecord) ([]model.Interval, error) {
	var out []model.Interval
	for _, rec := range recs {
		switch rec.Kind {
		case "instant":
			on, err := time.Parse(dateLayout, rec.On)
			if err != nil {
				return nil, fmt.Errorf("instant interval: %w", err)
			}
			out = append(out, model.NewInstant(on))
		case "range":
			from, err := time.Parse(dateLayout, rec.From)
			if err != nil {
				return nil, fmt.Errorf("range interval: %w", err)
			}
			to, err := time.Parse(dateLayout, rec.To)
			if err != nil {
				return nil, fmt.Errorf("range interval: %w", err)
			}
			iv, err := model.NewRange(from, to)
			if err != nil {
				return nil, err
			}
			out = append(out, iv)
		default:
			return nil, fmt.Errorf("unknown interval kind %q", rec.Kind)
		}
	}
	return out, nil
}
