package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher loads pages in headless Chromium and returns the DOM
// after script execution has settled. The source site renders its
// detail table client-side on some deployments, where a plain GET only
// returns the page scaffold.
type BrowserFetcher struct {
	timeout time.Duration

	// settle is a short pause after document-ready to allow the final
	// table render.
	settle time.Duration
}

func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{
		timeout: timeout,
		settle:  500 * time.Millisecond,
	}
}

func (f *BrowserFetcher) Fetch(parentCtx context.Context, url string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, f.timeout)
	defer timeoutCancel()

	var outer string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("fetch: chromedp run failed: %w", err)
	}

	return []byte(outer), nil
}
