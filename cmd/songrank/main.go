// Command songrank scrapes the KKBOX daily new-release chart for one date and
// writes it to CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"songrank/internal/app"
	"songrank/internal/browser"
	"songrank/internal/cache"
	"songrank/internal/chart"
	"songrank/internal/config"
	"songrank/internal/firestore"
	"songrank/internal/logging"
	"songrank/internal/sink"
	"songrank/internal/store"
)

const usageHeader = `Usage: songrank -o <file-or-dir> [options]

Scrape the KKBOX daily new-release chart (Taiwan, traditional Chinese) and
write it as CSV. Date parts default to today.

Options:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newCLI().run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	opener func(browser.ChromeOptions) browser.Opener
}

func newCLI() *cli {
	return &cli{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
		opener: func(o browser.ChromeOptions) browser.Opener { return browser.NewChrome(o) },
	}
}

type flags struct {
	year, month, day string
	output           string
	xlsx             bool
	play             bool
	noCache          bool
	timeout          time.Duration
	headless         bool
	selectors        string
	set              map[string]bool
}

func (f *flags) provided(names ...string) bool {
	for _, n := range names {
		if f.set[n] {
			return true
		}
	}
	return false
}

func (f *flags) overrides() chart.DateOverrides {
	var o chart.DateOverrides
	if f.provided("y", "year") {
		o.Year = &f.year
	}
	if f.provided("m", "month") {
		o.Month = &f.month
	}
	if f.provided("d", "day") {
		o.Day = &f.day
	}
	return o
}

func newFlagSet(f *flags) *flag.FlagSet {
	fs := flag.NewFlagSet("songrank", flag.ContinueOnError)

	stringFlag := func(p *string, short, long, usage string) {
		fs.StringVar(p, short, "", usage)
		fs.StringVar(p, long, "", usage)
	}
	stringFlag(&f.year, "y", "year", "chart year, e.g. 2024")
	stringFlag(&f.month, "m", "month", "chart month, 1-12")
	stringFlag(&f.day, "d", "day", "chart day of month")
	stringFlag(&f.output, "o", "output-file-or-dir", "CSV file to write, or a directory for the default file name (required)")

	fs.BoolVar(&f.xlsx, "xlsx", false, "also write an .xlsx workbook next to the CSV")
	fs.BoolVar(&f.play, "play", false, "after writing, play the whole chart until ENTER is pressed")
	fs.BoolVar(&f.noCache, "no-cache", false, "ignore cached rows and always scrape")
	fs.DurationVar(&f.timeout, "timeout", 0, "how long to wait for the chart to render (default from SONGRANK_RENDER_TIMEOUT)")
	fs.BoolVar(&f.headless, "headless", true, "run Chrome without a window")
	fs.StringVar(&f.selectors, "selectors", "", "YAML file overriding the chart CSS selectors")
	return fs
}

func (c *cli) usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprint(w, usageHeader)
	out := fs.Output()
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(out)
}

func (c *cli) run(ctx context.Context, args []string) int {
	f := &flags{set: make(map[string]bool)}
	fs := newFlagSet(f)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.usage(fs, c.stdout)
			return 0
		}
		c.usage(fs, c.stderr)
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(c.stderr, "unexpected argument %q\n", fs.Arg(0))
		c.usage(fs, c.stderr)
		return 2
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if f.output == "" {
		fmt.Fprintln(c.stderr, "missing --output-file-or-dir")
		c.usage(fs, c.stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 2
	}
	if f.provided("selectors") {
		cfg.SelectorsFile = f.selectors
	}
	if f.provided("timeout") {
		cfg.RenderTimeout = f.timeout
	}
	if f.provided("headless") {
		cfg.Headless = f.headless
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(c.stderr, err)
		return 2
	}
	selectors, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 2
	}

	logger, logCloser := logging.New(cfg.LogConfig, c.stderr)
	defer logCloser.Close()
	slog.SetDefault(logger)

	if f.play && cfg.Headless {
		logger.Warn("Play-all in headless Chrome is silent; pass --headless=false to hear it")
	}

	date := chart.ResolveDate(f.overrides(), c.now())
	outputPath := sink.ResolvePath(f.output, date)
	logger.Info("Scraping chart", "date", date.String(), "output", outputPath)

	runner, closeRunner, err := c.newRunner(ctx, cfg, selectors, logger)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		return 1
	}
	defer closeRunner()

	err = runner.Run(ctx, app.Options{
		Date:       date,
		OutputPath: outputPath,
		XLSX:       f.xlsx,
		Play:       f.play,
		NoCache:    f.noCache,
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, chart.ErrRenderTimeout):
		logger.Warn("Chart did not render in time, nothing written", "date", date.String(), "timeout", cfg.RenderTimeout)
		return 0
	case errors.Is(err, app.ErrPartialDelivery):
		logger.Error("Some outputs failed", "error", err)
		return 1
	case errors.Is(err, context.Canceled):
		logger.Error("Interrupted", "error", err)
		return 1
	default:
		logger.Error("Scrape failed", "error", err)
		c.usage(fs, c.stderr)
		return 1
	}
}

// newRunner builds the pipeline and the optional sinks. The returned func
// closes whatever was opened.
func (c *cli) newRunner(ctx context.Context, cfg *config.Config, selectors chart.Selectors, logger *slog.Logger) (*app.Runner, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("Closing resource", "error", err)
			}
		}
	}

	opener := c.opener(browser.ChromeOptions{
		ExecPath:    cfg.ChromePath,
		Headless:    cfg.Headless,
		UserAgent:   cfg.UserAgent,
		PageTimeout: cfg.PageTimeout,
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		},
	})
	pipeline := chart.NewPipeline(
		chart.NewNavigator(opener, cfg.BaseURL, logger),
		chart.NewRenderWaiter(selectors.Sentinel, cfg.RenderTimeout, cfg.PollInterval, logger),
		chart.NewRowExtractor(selectors, c.stdout, logger),
		logger,
	)

	r := &app.Runner{
		Scraper:        pipeline,
		PlayAllElement: selectors.PlayAll,
		Stdin:          c.stdin,
		Stdout:         c.stdout,
		Logger:         logger,
		Now:            c.now,
	}

	if cfg.CacheDir != "" {
		rc, err := cache.New(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("opening cache: %w", err)
		}
		r.Cache = rc
		logger.Info("Cache enabled", "dir", cfg.CacheDir, "ttl", cfg.CacheTTL)
	}

	switch {
	case cfg.GCSBucket != "":
		s, err := store.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("opening GCS archive: %w", err)
		}
		closers = append(closers, s)
		r.Archive = s
		logger.Info("Archive: GCS bucket", "bucket", cfg.GCSBucket)
	case cfg.ArchiveDir != "":
		s, err := store.NewLocal(cfg.ArchiveDir)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("opening local archive: %w", err)
		}
		closers = append(closers, s)
		r.Archive = s
		logger.Info("Archive: local directory", "dir", cfg.ArchiveDir)
	}

	if cfg.ProjectID != "" {
		fc, err := firestore.New(ctx, cfg.ProjectID, cfg.FirestoreCollection)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("opening Firestore: %w", err)
		}
		closers = append(closers, fc)
		r.Rows = fc
		logger.Info("Firestore enabled", "project", cfg.ProjectID, "collection", cfg.FirestoreCollection)
	}

	return r, closeAll, nil
}
