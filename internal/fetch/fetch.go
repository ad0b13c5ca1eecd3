// Package fetch downloads course detail pages. Two fetchers are
// available: a plain HTTP client, and a headless-Chromium fetcher for
// when the source serves pages that only populate after script
// execution.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "uctimetable/internal/log"
	"uctimetable/internal/model"
	"uctimetable/internal/scrape"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 15 * time.Second

// Fetcher retrieves the raw HTML of a single URL. Injected so the
// pipeline is testable without network access.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the default plain-HTTP fetcher.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FetchAll downloads and parses every given course sequentially,
// replacing each course's sections wholesale on success. Failures are
// isolated per course: one unreachable or restructured page never
// blocks the timetable for the others. Row-level parse errors are
// logged and the affected rows skipped.
func FetchAll(ctx context.Context, f Fetcher, baseURL string, courses []*model.Course) []error {
	var errs []error

	for _, course := range courses {
		url := course.URL(baseURL)
		appLog.Info("fetching course page", "course", course.Key().String(), "url", url)

		body, err := f.Fetch(ctx, url)
		if err != nil {
			err = &scrape.FetchError{Course: course.Key().String(), Err: err}
			appLog.Error("course fetch failed", err, "course", course.Key().String())
			errs = append(errs, err)
			continue
		}

		sections, rowErrs, err := scrape.ParseCoursePage(bytes.NewReader(body), course.Year)
		if err != nil {
			err = &scrape.FetchError{Course: course.Key().String(), Err: err}
			appLog.Error("course page unparseable", err, "course", course.Key().String())
			errs = append(errs, err)
			continue
		}
		for _, rerr := range rowErrs {
			appLog.Error("activity row rejected", rerr, "course", course.Key().String())
			errs = append(errs, rerr)
		}

		course.Sections = sections
		appLog.Info("course loaded",
			"course", course.Key().String(),
			"sections", len(sections),
			"rows_rejected", len(rowErrs),
		)
	}

	return errs
}

// IsCourseError reports whether err is a per-course failure (as opposed
// to a row-level rejection).
func IsCourseError(err error) bool {
	var fe *scrape.FetchError
	return errors.As(err, &fe)
}
