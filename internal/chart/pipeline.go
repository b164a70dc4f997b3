package chart

import (
	"context"
	"fmt"
	"log/slog"

	"songrank/internal/browser"
	"songrank/internal/model"
)

// RowsHandler consumes the extracted rows while the page is still open.
type RowsHandler func(ctx context.Context, page browser.Page, rows []model.ChartRow) error

// Pipeline runs navigate, wait and extract for a single date.
type Pipeline struct {
	navigator *Navigator
	waiter    *RenderWaiter
	extractor *RowExtractor
	logger    *slog.Logger
}

// NewPipeline wires the three browser-facing stages together.
func NewPipeline(n *Navigator, w *RenderWaiter, e *RowExtractor, logger *slog.Logger) *Pipeline {
	return &Pipeline{navigator: n, waiter: w, extractor: e, logger: logger}
}

// Scrape loads the chart for d and hands its rows to handle. If the chart
// does not render in time, handle is not called and the error wraps
// ErrRenderTimeout. The browser is closed on every path.
func (p *Pipeline) Scrape(ctx context.Context, d model.TargetDate, handle RowsHandler) error {
	page, err := p.navigator.Navigate(ctx, d)
	if err != nil {
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			p.logger.Warn("Closing browser", "error", err)
		}
	}()

	ready, err := p.waiter.WaitForReady(ctx, page)
	if err != nil {
		return fmt.Errorf("waiting for chart %s: %w", d, err)
	}
	if !ready {
		return fmt.Errorf("chart %s: %w", d, ErrRenderTimeout)
	}

	rows, err := p.extractor.Extract(ctx, page)
	if err != nil {
		return fmt.Errorf("chart %s: %w", d, err)
	}
	return handle(ctx, page, rows)
}
