// Package sink writes extracted chart rows to files.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"songrank/internal/model"
)

// Header is the fixed column header: rank today, rank yesterday, title, artist.
var Header = []string{"今日排行", "前日排行", "曲目", "歌手"}

// Error is returned when an output file cannot be created or written.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DefaultFileName is the name used when the output path is a directory.
func DefaultFileName(d model.TargetDate) string {
	return "kkbox-newrelease-" + d.String() + ".csv"
}

// ResolvePath turns the -o argument into a file path. A trailing separator
// or an existing directory gets DefaultFileName appended.
func ResolvePath(output string, d model.TargetDate) string {
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return filepath.Join(output, DefaultFileName(d))
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, DefaultFileName(d))
	}
	return output
}

func record(r model.ChartRow) []string {
	return []string{r.CurrentRank, r.PreviousRank, r.Title, r.Artist}
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &Error{Path: path, Op: "create directory for", Err: err}
	}
	return nil
}
