// Package config provides the YAML-based application configuration:
// which courses the user takes, which offering they picked per section,
// how to reach the source site and where to keep the cache.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"uctimetable/internal/model"
	"uctimetable/internal/schedule"
)

// ConfigError reports a malformed user-supplied value together with the
// offending key.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// CourseConfig declares one course occurrence the user is enrolled in.
type CourseConfig struct {
	// Title is the course code, e.g. "COSC262".
	Title string `yaml:"title"`
	// Year the course runs in.
	Year int `yaml:"year"`
	// Semester is 1 or 2.
	Semester int `yaml:"semester"`
	// Colour names the terminal colour used when printing this course.
	// One of black, red, green, yellow, blue, magenta, cyan, white.
	// Empty means uncoloured. Unknown names degrade to uncoloured.
	Colour string `yaml:"colour,omitempty"`
	// Selections maps a section name (e.g. "Lecture A") to the chosen
	// offering, as a 1-based index into the section's listed
	// activities. Sections without an entry default to 1; out-of-range
	// values (including 0) fall back to the first offering at resolve
	// time rather than failing the run.
	Selections map[string]int `yaml:"selections,omitempty"`
}

// GridConfig bounds the hourly bins of the weekly grid. Activities
// outside these hours are omitted from the grid (documented
// limitation), not corrupted.
type GridConfig struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// Config is the top-level application configuration.
type Config struct {
	// BaseURL is the course detail endpoint of the source site.
	BaseURL string `yaml:"base_url"`

	// CachePath is where parsed courses are persisted between runs.
	CachePath string `yaml:"cache_path"`

	// Refresh is a cron-style schedule; the cache is considered stale
	// once the schedule has ticked since the cache was written. Empty
	// disables scheduled refresh (only --force refetches).
	Refresh string `yaml:"refresh,omitempty"`

	// RenderJS switches the fetcher to headless Chromium for source
	// deployments that build the detail table client-side.
	RenderJS bool `yaml:"render_js,omitempty"`

	// FetchTimeoutSec bounds a single page fetch.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec,omitempty"`

	Grid GridConfig `yaml:"grid"`

	Courses []CourseConfig `yaml:"courses"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "http://www.canterbury.ac.nz/courseinfo/GetCourseDetails.aspx",
		CachePath:       defaultCachePath(),
		Refresh:         "0 6 * * 1",
		FetchTimeoutSec: 15,
		Grid:            GridConfig{StartHour: 8, EndHour: 16},
		Courses:         []CourseConfig{},
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timetable-cache.json"
	}
	return filepath.Join(home, ".cache", "timetable", "courses.json")
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.CachePath == "" {
		c.CachePath = def.CachePath
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = def.FetchTimeoutSec
	}
	if c.Grid.StartHour == 0 && c.Grid.EndHour == 0 {
		c.Grid = def.Grid
	}
	if c.Courses == nil {
		c.Courses = []CourseConfig{}
	}
}

// Validate checks user-supplied values, reporting the first offense
// with its config key.
func (c *Config) Validate() error {
	if c.Grid.StartHour < 0 || c.Grid.EndHour > 24 || c.Grid.StartHour >= c.Grid.EndHour {
		return &ConfigError{Key: "grid", Reason: fmt.Sprintf("invalid hour bounds %d..%d", c.Grid.StartHour, c.Grid.EndHour)}
	}
	for i, cc := range c.Courses {
		key := fmt.Sprintf("courses[%d]", i)
		if cc.Title == "" {
			return &ConfigError{Key: key + ".title", Reason: "course title is required"}
		}
		if cc.Year < 1 {
			return &ConfigError{Key: key + ".year", Reason: fmt.Sprintf("invalid year %d", cc.Year)}
		}
		if cc.Semester != 1 && cc.Semester != 2 {
			return &ConfigError{Key: key + ".semester", Reason: fmt.Sprintf("semester must be 1 or 2, got %d", cc.Semester)}
		}
	}
	return nil
}

// DeclaredCourses builds the (empty, to-be-populated) course records
// declared by the config, in declaration order.
func (c *Config) DeclaredCourses() []*model.Course {
	out := make([]*model.Course, 0, len(c.Courses))
	for _, cc := range c.Courses {
		out = append(out, &model.Course{Title: cc.Title, Year: cc.Year, Semester: cc.Semester})
	}
	return out
}

// Selections collects the per-section offering choices across all
// declared courses.
func (c *Config) Selections() schedule.Selection {
	sel := make(schedule.Selection)
	for _, cc := range c.Courses {
		for section, idx := range cc.Selections {
			sel[schedule.SelectionKey{Course: cc.Title, Section: section}] = idx
		}
	}
	return sel
}

// ColourOf returns the configured colour name for a course title.
func (c *Config) ColourOf(title string) string {
	for _, cc := range c.Courses {
		if cc.Title == title {
			return cc.Colour
		}
	}
	return ""
}

// Load loads configuration from the given YAML path. On first run (no
// file) it writes and returns the default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with
// 0600 permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timetable-config-*.tmp")
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
