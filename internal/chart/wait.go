package chart

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"songrank/internal/browser"
)

const (
	DefaultRenderTimeout = 15 * time.Second
	DefaultPollInterval  = 250 * time.Millisecond
)

// readyPattern matches once the sentinel holds at least one character.
var readyPattern = regexp.MustCompile(`.+`)

// RenderWaiter polls the sentinel element until client-side rendering has
// filled it in.
type RenderWaiter struct {
	selector string
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewRenderWaiter creates a waiter on selector. Non-positive durations fall
// back to the defaults.
func NewRenderWaiter(selector string, timeout, interval time.Duration, logger *slog.Logger) *RenderWaiter {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &RenderWaiter{
		selector: selector,
		timeout:  timeout,
		interval: interval,
		logger:   logger,
	}
}

// WaitForReady reports whether the sentinel rendered within the timeout.
// Probe errors are treated as not-ready-yet. The only error returned is the
// cancellation of ctx itself.
func (w *RenderWaiter) WaitForReady(ctx context.Context, page browser.Page) (bool, error) {
	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		text, err := page.Text(waitCtx, w.selector)
		if err != nil {
			w.logger.Debug("Render probe failed", "attempt", attempt, "error", err)
		} else if readyPattern.MatchString(text) {
			w.logger.Info("Chart rendered",
				"attempts", attempt,
				"elapsed", time.Since(start).Round(time.Millisecond))
			return true, nil
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return false, err
			}
			w.logger.Warn("Chart did not render in time",
				"selector", w.selector,
				"timeout", w.timeout,
				"attempts", attempt)
			return false, nil
		case <-ticker.C:
		}
	}
}
