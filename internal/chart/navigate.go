package chart

import (
	"context"
	"log/slog"
	"strings"

	"songrank/internal/browser"
	"songrank/internal/model"
)

// DefaultBaseURL is the host serving the daily charts.
const DefaultBaseURL = "https://kma.kkbox.com"

// ChartURL returns the daily new-release chart URL for d under base.
func ChartURL(base string, d model.TargetDate) string {
	return strings.TrimRight(base, "/") +
		"/charts/daily/newrelease?date=" + d.String() + "&lang=tc&terr=tw"
}

// Navigator opens a browser session on a chart page.
type Navigator struct {
	opener  browser.Opener
	baseURL string
	logger  *slog.Logger
}

// NewNavigator creates a Navigator. An empty baseURL means DefaultBaseURL.
func NewNavigator(opener browser.Opener, baseURL string, logger *slog.Logger) *Navigator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Navigator{opener: opener, baseURL: baseURL, logger: logger}
}

// Navigate starts a session and loads the chart for d. The caller owns the
// returned page and must close it. On error no session is left open.
func (n *Navigator) Navigate(ctx context.Context, d model.TargetDate) (browser.Page, error) {
	url := ChartURL(n.baseURL, d)

	page, err := n.opener.Open(ctx)
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	n.logger.Info("Loading chart page", "date", d.String(), "url", url)
	if err := page.Navigate(ctx, url); err != nil {
		if cerr := page.Close(); cerr != nil {
			n.logger.Warn("Closing browser after failed navigation", "error", cerr)
		}
		return nil, &NavigationError{URL: url, Err: err}
	}
	return page, nil
}
