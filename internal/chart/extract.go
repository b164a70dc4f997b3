package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"songrank/internal/browser"
	"songrank/internal/model"
)

// RowExtractor reads chart rows off a rendered page.
type RowExtractor struct {
	selectors Selectors
	progress  io.Writer
	logger    *slog.Logger
}

// NewRowExtractor creates an extractor. Every kept row is echoed to
// progress as "rank: title [artist]"; pass io.Discard to silence it.
func NewRowExtractor(selectors Selectors, progress io.Writer, logger *slog.Logger) *RowExtractor {
	return &RowExtractor{selectors: selectors, progress: progress, logger: logger}
}

// Extract returns the rows of the page in page order. Rows missing a field
// are logged and dropped; only failing to list the rows is an error.
func (e *RowExtractor) Extract(ctx context.Context, page browser.Page) ([]model.ChartRow, error) {
	elements, err := page.QueryAll(ctx, e.selectors.Row)
	if err != nil {
		return nil, fmt.Errorf("listing chart rows: %w", err)
	}

	rows := make([]model.ChartRow, 0, len(elements))
	for i, el := range elements {
		row, err := e.extractRow(i, el)
		if err != nil {
			e.logger.Warn("Skipping chart row", "error", err)
			continue
		}
		fmt.Fprintf(e.progress, "%s: %s [%s]\n", row.CurrentRank, row.Title, row.Artist)
		rows = append(rows, row)
	}

	e.logger.Info("Extracted chart rows",
		"rows", len(rows),
		"skipped", len(elements)-len(rows))
	return rows, nil
}

func (e *RowExtractor) extractRow(index int, el browser.Element) (model.ChartRow, error) {
	var row model.ChartRow
	fields := []struct {
		name     string
		selector string
		dst      *string
	}{
		{"current rank", e.selectors.CurrentRank, &row.CurrentRank},
		{"previous rank", e.selectors.PreviousRank, &row.PreviousRank},
		{"title", e.selectors.Title, &row.Title},
		{"artist", e.selectors.Artist, &row.Artist},
	}

	for _, f := range fields {
		field, ok := el.Find(f.selector)
		if !ok {
			return model.ChartRow{}, &RowFieldMissingError{Index: index, Field: f.name, Selector: f.selector}
		}
		*f.dst = field.Text()
	}
	return row, nil
}
