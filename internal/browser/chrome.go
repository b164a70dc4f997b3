package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultPageTimeout = 30 * time.Second

// textJS reads an element's innerText without waiting for it to exist.
const textJS = `(() => {
	const el = document.querySelector(%q);
	return el ? el.innerText : "";
})()`

// ChromeOptions is the startup configuration for a Chrome session.
type ChromeOptions struct {
	// ExecPath is the Chrome/Chromium binary. Empty lets chromedp search PATH.
	ExecPath    string
	Headless    bool
	UserAgent   string
	PageTimeout time.Duration
	// Logf receives chromedp's own log output. Nil discards it.
	Logf func(format string, args ...any)
}

// Chrome opens pages in a local Chrome process driven over CDP.
type Chrome struct {
	opts ChromeOptions
}

// NewChrome creates an Opener backed by chromedp.
func NewChrome(opts ChromeOptions) *Chrome {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = defaultPageTimeout
	}
	return &Chrome{opts: opts}
}

// Open starts Chrome and returns its first tab.
func (c *Chrome) Open(ctx context.Context) (Page, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}
	for name, value := range flagOverrides(c.opts) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	opts = append(opts, chromedp.WindowSize(1280, 900))
	if c.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	var ctxOpts []chromedp.ContextOption
	if c.opts.Logf != nil {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(c.opts.Logf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &chromePage{
		ctx:         tabCtx,
		timeout:     c.opts.PageTimeout,
		allocCancel: allocCancel,
	}, nil
}

// flagOverrides are applied on top of chromedp.DefaultExecAllocatorOptions.
// The default headless option also mutes audio and hides scrollbars, so a
// visible window has to switch those back off or play-all stays silent.
func flagOverrides(o ChromeOptions) map[string]any {
	flags := map[string]any{
		"headless":    o.Headless,
		"disable-gpu": true,
		"no-sandbox":  true,
	}
	if !o.Headless {
		flags["mute-audio"] = false
		flags["hide-scrollbars"] = false
	}
	return flags
}

type chromePage struct {
	ctx         context.Context
	timeout     time.Duration
	allocCancel context.CancelFunc
}

// run executes actions on the tab, bounded by the page timeout and by ctx.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) Text(ctx context.Context, selector string) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(textJS, selector), &text)); err != nil {
		return "", fmt.Errorf("reading text of %s: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

func (p *chromePage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshotting page: %w", err)
	}
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}
	return doc.QueryAll(selector), nil
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

// Close shuts the browser down gracefully, then tears down the allocator.
func (p *chromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.allocCancel()
	return err
}
