// Command timetable scrapes the university's public course pages,
// caches the parsed activities, and prints the user's personal
// timetable in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"uctimetable/internal/cache"
	"uctimetable/internal/config"
	"uctimetable/internal/export"
	"uctimetable/internal/fetch"
	appLog "uctimetable/internal/log"
	"uctimetable/internal/model"
	"uctimetable/internal/render"
	"uctimetable/internal/schedule"
)

const usage = `Print, display, and manage your UC timetable.

Usage:
  timetable show   [--on DATE] [--force-fetch]   activities for one date
  timetable week   [--on DATE] [--force-fetch]   weekly hourly grid
  timetable next   [--time] [--force-fetch]      next class(es) today
  timetable fetch  [--force]                     refresh the course cache
  timetable export --format ics|csv [--out PATH] export the timetable

Common flags:
  --config PATH   config file (default ~/.config/timetable/config.yaml)
  -v              verbose logging
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	defer appLog.Sync()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "show":
		err = runShow(args)
	case "week":
		err = runWeek(args)
	case "next":
		err = runNext(args)
	case "fetch":
		err = runFetch(args)
	case "export":
		err = runExport(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		appLog.Error("command failed", err, "command", cmd)
		os.Exit(1)
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	configPath string
	verbose    bool
	force      bool
}

func registerCommon(fs *flag.FlagSet, forceName string) *commonFlags {
	cf := &commonFlags{}
	fs.StringVar(&cf.configPath, "config", defaultConfigPath(), "Path to config file")
	fs.BoolVar(&cf.verbose, "v", false, "Verbose logging")
	if forceName != "" {
		fs.BoolVar(&cf.force, forceName, false, "Refetch course pages even if the cache is fresh")
	}
	return cf
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "timetable", "config.yaml")
}

func (cf *commonFlags) applyLogging() {
	if cf.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}
}

// onFlag parses a --on date value, defaulting to now.
func onFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--on: %w", err)
	}
	return t, nil
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	cf := registerCommon(fs, "force-fetch")
	on := fs.String("on", "", "Show the timetable for this date (YYYY-MM-DD)")
	fs.Parse(args)
	cf.applyLogging()

	date, err := onFlag(*on)
	if err != nil {
		return err
	}

	app, err := loadApp(cf.configPath, cf.force)
	if err != nil {
		return err
	}
	defer app.saveCache()

	render.DayList(os.Stdout, schedule.ActivitiesOn(app.entries, date), date, app.cfg.ColourOf)
	return nil
}

func runWeek(args []string) error {
	fs := flag.NewFlagSet("week", flag.ExitOnError)
	cf := registerCommon(fs, "force-fetch")
	on := fs.String("on", "", "Show the week containing this date (YYYY-MM-DD)")
	fs.Parse(args)
	cf.applyLogging()

	date, err := onFlag(*on)
	if err != nil {
		return err
	}

	app, err := loadApp(cf.configPath, cf.force)
	if err != nil {
		return err
	}
	defer app.saveCache()

	grid := schedule.Grid{StartHour: app.cfg.Grid.StartHour, EndHour: app.cfg.Grid.EndHour}
	render.WeekTable(os.Stdout, grid, grid.LayOutWeek(app.entries, date))
	return nil
}

func runNext(args []string) error {
	fs := flag.NewFlagSet("next", flag.ExitOnError)
	cf := registerCommon(fs, "force-fetch")
	showTime := fs.Bool("time", false, "Show the time to the next class instead")
	fs.Parse(args)
	cf.applyLogging()

	app, err := loadApp(cf.configPath, cf.force)
	if err != nil {
		return err
	}
	defer app.saveCache()

	now := time.Now()
	next := schedule.NextAfter(app.entries, now)
	if *showTime {
		render.TimeToNext(os.Stdout, next, now)
		return nil
	}
	render.NextList(os.Stdout, next, now, app.cfg.ColourOf)
	return nil
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cf := registerCommon(fs, "force")
	fs.Parse(args)
	cf.applyLogging()

	app, err := loadApp(cf.configPath, cf.force)
	if err != nil {
		return err
	}
	app.saveCache()

	loaded := 0
	for _, c := range app.courses {
		if c.HasActivities() {
			loaded++
		}
	}
	fmt.Printf("%d of %d courses loaded\n", loaded, len(app.courses))
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cf := registerCommon(fs, "")
	format := fs.String("format", "ics", "Export format: ics or csv")
	out := fs.String("out", "", "Output file (default stdout)")
	fs.Parse(args)
	cf.applyLogging()

	app, err := loadApp(cf.configPath, false)
	if err != nil {
		return err
	}
	defer app.saveCache()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "ics":
		return export.WriteICS(w, app.entries)
	case "csv":
		return export.WriteCSV(w, app.entries)
	default:
		return fmt.Errorf("unknown export format %q", *format)
	}
}

// app bundles one run's loaded state: config, reconciled courses and
// the resolved per-section activities.
type app struct {
	cfg     *config.Config
	courses []*model.Course
	entries []schedule.Entry
}

// loadApp runs the load phase: config, cache, fetch-if-needed, resolve.
// Per-course fetch failures are logged and do not abort the run; the
// remaining courses still produce a timetable.
func loadApp(configPath string, force bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	cached, savedAt, err := cache.Load(cfg.CachePath)
	if err != nil {
		// An unreadable or incompatible cache is recoverable: refetch.
		appLog.Error("cache unreadable, refetching", err, "cache_path", cfg.CachePath)
		cached, savedAt = nil, time.Time{}
	}

	courses := cache.Reconcile(cfg.DeclaredCourses(), cached)

	stale, err := cache.Stale(savedAt, cfg.Refresh, time.Now())
	if err != nil {
		return nil, err
	}

	var toFetch []*model.Course
	for _, c := range courses {
		if force || stale || !c.HasActivities() {
			toFetch = append(toFetch, c)
		}
	}

	if len(toFetch) > 0 {
		fetcher := newFetcher(cfg)
		errs := fetchAll(fetcher, cfg, toFetch)
		appLog.Info("fetch phase complete",
			"courses", len(toFetch),
			"errors", len(errs),
			"stale", stale,
			"forced", force,
		)
	}

	return &app{
		cfg:     cfg,
		courses: courses,
		entries: schedule.Resolve(courses, cfg.Selections()),
	}, nil
}

func newFetcher(cfg *config.Config) fetch.Fetcher {
	timeout := time.Duration(cfg.FetchTimeoutSec) * time.Second
	if cfg.RenderJS {
		return fetch.NewBrowserFetcher(timeout)
	}
	return fetch.NewHTTPFetcher(timeout)
}

func fetchAll(f fetch.Fetcher, cfg *config.Config, courses []*model.Course) []error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return fetch.FetchAll(ctx, f, cfg.BaseURL, courses)
}

// saveCache persists the run's courses. A write failure loses
// persistence only, never the already-rendered result.
func (a *app) saveCache() {
	if err := cache.Save(a.cfg.CachePath, a.courses); err != nil {
		appLog.Error("cache write failed", err, "cache_path", a.cfg.CachePath)
	}
}
