package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uctimetable/internal/schedule"
)

const sampleYAML = `
base_url: http://example.test/GetCourseDetails.aspx
cache_path: /tmp/test-courses.json
refresh: "0 6 * * 1"
grid:
  start_hour: 8
  end_hour: 16
courses:
  - title: COSC262
    year: 2018
    semester: 1
    colour: cyan
    selections:
      Lecture A: 1
      Tutorial A: 2
  - title: MATH120
    year: 2018
    semester: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(cfg.Courses))
	}
	if cfg.ColourOf("COSC262") != "cyan" || cfg.ColourOf("MATH120") != "" {
		t.Errorf("colours = %q, %q", cfg.ColourOf("COSC262"), cfg.ColourOf("MATH120"))
	}

	sel := cfg.Selections()
	if sel[schedule.SelectionKey{Course: "COSC262", Section: "Tutorial A"}] != 2 {
		t.Errorf("selections = %v", sel)
	}

	declared := cfg.DeclaredCourses()
	if len(declared) != 2 || declared[0].Key().Title != "COSC262" || declared[1].Semester != 2 {
		t.Errorf("declared = %+v", declared)
	}
}

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL == "" || cfg.Grid.StartHour != 8 || cfg.Grid.EndHour != 16 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	if cfg.BaseURL == "" || cfg.CachePath == "" || cfg.FetchTimeoutSec <= 0 {
		t.Errorf("normalize left zero values: %+v", cfg)
	}
	if cfg.Grid.StartHour != 8 || cfg.Grid.EndHour != 16 {
		t.Errorf("grid defaults = %+v", cfg.Grid)
	}
}

func TestLoadToleratesBadSelectionIndex(t *testing.T) {
	// A zero (or otherwise out-of-range) selection index is not fatal:
	// the resolver falls back to the first offering instead. Load must
	// keep the value as-is for the resolver to handle.
	body := "courses:\n  - title: COSC262\n    year: 2018\n    semester: 1\n    selections:\n      Lecture A: 0\n"

	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("bad selection index should not fail the load: %v", err)
	}

	sel := cfg.Selections()
	if sel[schedule.SelectionKey{Course: "COSC262", Section: "Lecture A"}] != 0 {
		t.Errorf("selections = %v, want the raw index preserved", sel)
	}
}

func TestValidateReportsOffendingKey(t *testing.T) {
	cases := []struct {
		name string
		body string
		key  string
	}{
		{
			"bad semester",
			"courses:\n  - title: COSC262\n    year: 2018\n    semester: 3\n",
			"semester",
		},
		{
			"missing title",
			"courses:\n  - year: 2018\n    semester: 1\n",
			"title",
		},
		{
			"bad grid bounds",
			"grid:\n  start_hour: 16\n  end_hour: 8\n",
			"grid",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("got %v, want ConfigError", err)
			}
			if !strings.Contains(cerr.Key, tc.key) {
				t.Errorf("error key %q should mention %q", cerr.Key, tc.key)
			}
		})
	}
}
