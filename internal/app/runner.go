// Package app runs one chart scrape from cache lookup to the last sink.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"songrank/internal/browser"
	"songrank/internal/cache"
	"songrank/internal/chart"
	"songrank/internal/model"
	"songrank/internal/sink"
	"songrank/internal/store"
)

// ErrPartialDelivery means the CSV was written but an optional output
// (workbook, archive, Firestore) failed.
var ErrPartialDelivery = errors.New("chart written but some outputs failed")

// Scraper loads a chart and hands its rows to a handler while the page is
// open. *chart.Pipeline implements it.
type Scraper interface {
	Scrape(ctx context.Context, d model.TargetDate, handle chart.RowsHandler) error
}

// RowStore persists a chart's rows. *firestore.Client implements it.
type RowStore interface {
	ReplaceRowsForDate(ctx context.Context, date string, rows []model.ChartRow, batchID string) error
}

// Options are the per-run choices taken from the command line.
type Options struct {
	Date       model.TargetDate
	OutputPath string
	XLSX       bool
	Play       bool
	NoCache    bool
}

// Runner holds the collaborators of a run. Cache, Archive and Rows are
// optional; nil disables them.
type Runner struct {
	Scraper        Scraper
	Cache          *cache.Cache
	Archive        store.Store
	Rows           RowStore
	PlayAllElement string
	Stdin          io.Reader
	Stdout         io.Writer
	Logger         *slog.Logger
	Now            func() time.Time
}

// Run scrapes opts.Date and writes the outputs. A chart that never renders
// returns an error wrapping chart.ErrRenderTimeout and writes nothing.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	// Playing needs a live page, so it always goes to the site.
	useCache := r.Cache != nil && !opts.NoCache && !opts.Play

	if useCache {
		if rows, ok := r.Cache.Get(opts.Date); ok {
			r.Logger.Info("Using cached chart", "date", opts.Date.String(), "rows", len(rows))
			return r.deliver(ctx, opts, rows)
		}
	} else if r.Cache != nil && opts.NoCache {
		if err := r.Cache.Invalidate(opts.Date); err != nil {
			r.Logger.Warn("Dropping cached chart", "error", err)
		}
	}

	return r.Scraper.Scrape(ctx, opts.Date, func(ctx context.Context, page browser.Page, rows []model.ChartRow) error {
		err := r.deliver(ctx, opts, rows)
		if err != nil && !errors.Is(err, ErrPartialDelivery) {
			return err
		}

		if r.Cache != nil {
			if cerr := r.Cache.Set(opts.Date, rows); cerr != nil {
				r.Logger.Warn("Caching chart rows", "error", cerr)
			}
		}

		if opts.Play {
			if perr := r.playAll(ctx, page); perr != nil {
				r.Logger.Error("Playing chart", "error", perr)
			}
		}
		return err
	})
}

// deliver writes the CSV, then the optional outputs. Only a CSV failure
// stops delivery; the rest are collected into ErrPartialDelivery.
func (r *Runner) deliver(ctx context.Context, opts Options, rows []model.ChartRow) error {
	if err := sink.WriteCSV(opts.OutputPath, rows); err != nil {
		return err
	}
	r.Logger.Info("Chart written", "path", opts.OutputPath, "rows", len(rows))

	var errs []error

	if opts.XLSX {
		path := sink.XLSXPath(opts.OutputPath)
		if err := sink.WriteXLSX(path, rows); err != nil {
			r.Logger.Error("Writing workbook", "error", err)
			errs = append(errs, err)
		} else {
			r.Logger.Info("Workbook written", "path", path)
		}
	}

	if r.Archive != nil {
		if err := store.ArchiveFile(ctx, r.Archive, opts.Date, opts.OutputPath, ".csv"); err != nil {
			r.Logger.Error("Archiving chart", "error", err)
			errs = append(errs, err)
		} else {
			r.Logger.Info("Chart archived", "key", store.ArchiveKey(opts.Date))
		}
	}

	if r.Rows != nil {
		batchID := r.now().UTC().Format("20060102-150405")
		if err := r.Rows.ReplaceRowsForDate(ctx, opts.Date.String(), rows, batchID); err != nil {
			r.Logger.Error("Storing chart rows", "error", err)
			errs = append(errs, fmt.Errorf("storing rows: %w", err))
		} else {
			r.Logger.Info("Chart rows stored", "date", opts.Date.String(), "batch_id", batchID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPartialDelivery, errors.Join(errs...))
	}
	return nil
}

// playAll starts the page's play-all preview and blocks until a line is
// read from stdin.
func (r *Runner) playAll(ctx context.Context, page browser.Page) error {
	if err := page.Click(ctx, r.PlayAllElement); err != nil {
		return err
	}
	fmt.Fprintln(r.Stdout, "Playing the whole chart... press ENTER to stop")

	_, err := bufio.NewReader(r.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
