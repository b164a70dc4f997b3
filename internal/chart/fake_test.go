package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"songrank/internal/browser"
	"songrank/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePage serves a static HTML snapshot. The first readyAfter Text probes
// return "" to simulate a page that is still rendering.
type fakePage struct {
	doc        *browser.Document
	readyAfter int
	textErr    error
	queryErr   error
	navErr     error

	probes    int
	queries   int
	navigated []string
	clicked   []string
	closed    int
}

func newFakePage(t *testing.T, html string) *fakePage {
	t.Helper()
	doc, err := browser.ParseHTML(html)
	require.NoError(t, err)
	return &fakePage{doc: doc}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) Text(ctx context.Context, selector string) (string, error) {
	p.probes++
	if p.textErr != nil {
		return "", p.textErr
	}
	if p.probes <= p.readyAfter {
		return "", nil
	}
	text, _ := p.doc.Text(selector)
	return text, nil
}

func (p *fakePage) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	p.queries++
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return p.doc.QueryAll(selector), nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *fakePage) Close() error {
	p.closed++
	return nil
}

type fakeOpener struct {
	page  *fakePage
	err   error
	opens int
}

func (o *fakeOpener) Open(ctx context.Context) (browser.Page, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.page, nil
}

// chartHTML renders rows with the KKBOX markup. A field left empty in a row
// is omitted from the markup entirely.
func chartHTML(rows ...model.ChartRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="charts-list">`)
	for _, r := range rows {
		b.WriteString(`<li class="charts-list-row">`)
		if r.CurrentRank != "" {
			fmt.Fprintf(&b, `<span class="charts-list-rank">%s</span>`, r.CurrentRank)
		}
		if r.PreviousRank != "" {
			fmt.Fprintf(&b, `<span class="charts-list-prev-rank">%s</span>`, r.PreviousRank)
		}
		b.WriteString(`<div class="charts-list-desc">`)
		if r.Title != "" {
			fmt.Fprintf(&b, `<span class="charts-list-song">%s</span>`, r.Title)
		}
		if r.Artist != "" {
			fmt.Fprintf(&b, ` <span class="charts-list-artist">%s</span>`, r.Artist)
		}
		b.WriteString(`</div></li>`)
	}
	b.WriteString(`</ul><a class="btn-preview-all" href="#">play</a></body></html>`)
	return b.String()
}
