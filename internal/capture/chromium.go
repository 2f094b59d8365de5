// Package capture rasterizes the served visualization to PNG via a
// headless Chromium instance.
package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default capture parameters, matching the default scene viewport.
const (
	DefaultWidth   = 800
	DefaultHeight  = 800
	DefaultTimeout = 30 * time.Second
)

// Options parameterizes one snapshot.
type Options struct {
	// URL of the /view page to capture, e.g. "http://127.0.0.1:8080/view".
	URL string

	// OutputPath is where the PNG lands.
	OutputPath string

	// Width and Height are the emulated viewport in pixels; zero means
	// the defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero means DefaultTimeout.
	Timeout time.Duration
}

// SnapshotPNG navigates a headless Chromium to opts.URL, waits for the
// page's data-ready marker and writes a full screenshot. The /view
// page renders the SVG server-side, so the marker is present as soon
// as the document arrives; the wait still guards against slow paints.
func SnapshotPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Settle time for the final paint.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: writing PNG failed: %w", err)
	}
	return nil
}
