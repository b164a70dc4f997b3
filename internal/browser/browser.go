// Package browser abstracts the headless browser the chart pipeline drives.
// The pipeline only needs to load a URL, probe an element's text, list
// elements and click; anything that can do that satisfies Page.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Opener starts a browser session.
type Opener interface {
	Open(ctx context.Context) (Page, error)
}

// Page is a single exclusively-owned browser tab.
type Page interface {
	// Navigate loads url and returns once the document has loaded.
	Navigate(ctx context.Context, url string) error

	// Text returns the visible text of the first element matching selector,
	// or "" if no element matches. It never waits for the element to appear.
	Text(ctx context.Context, selector string) (string, error)

	// QueryAll returns every element matching selector in document order.
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Close releases the tab and the browser process behind it.
	Close() error
}

// Element is a handle to a rendered element.
type Element interface {
	// Find returns the first descendant matching selector.
	Find(selector string) (Element, bool)

	// Text returns the element's trimmed text content.
	Text() string
}

// Document is a parsed snapshot of a rendered page.
type Document struct {
	doc *goquery.Document
}

// ParseHTML parses a rendered HTML snapshot.
func ParseHTML(html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) []Element {
	var out []Element
	d.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		out = append(out, selection{s: s})
	})
	return out
}

// Text returns the text of the first element matching selector and whether
// such an element exists.
func (d *Document) Text(selector string) (string, bool) {
	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(s.Text()), true
}

type selection struct {
	s *goquery.Selection
}

func (e selection) Find(selector string) (Element, bool) {
	found := e.s.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return selection{s: found}, true
}

func (e selection) Text() string {
	return strings.TrimSpace(e.s.Text())
}
