package chart

import (
	"errors"
	"fmt"
)

// ErrRenderTimeout means the chart never rendered within the wait timeout.
// It is a soft failure: the run produced no data and wrote nothing.
var ErrRenderTimeout = errors.New("chart did not render before timeout")

// NavigationError means the browser could not be started or the chart page
// could not be loaded.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigating to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// RowFieldMissingError reports a chart row lacking one of its fields. It is
// row-scoped: the row is dropped and extraction continues.
type RowFieldMissingError struct {
	Index    int
	Field    string
	Selector string
}

func (e *RowFieldMissingError) Error() string {
	return fmt.Sprintf("row %d: missing %s (%s)", e.Index, e.Field, e.Selector)
}
