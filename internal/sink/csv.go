package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"songrank/internal/model"
)

// WriteCSV writes rows to path in the Excel CSV dialect (comma separated,
// CRLF line endings) under the fixed Header. Parent directories are
// created. The file is flushed and closed on every path.
func WriteCSV(path string, rows []model.ChartRow) (err error) {
	if err := ensureParent(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return &Error{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &Error{Path: path, Op: "close", Err: cerr}
		}
	}()

	if err := EncodeCSV(f, rows); err != nil {
		return &Error{Path: path, Op: "write", Err: err}
	}
	return nil
}

// EncodeCSV writes the header and rows to w and flushes.
func EncodeCSV(w io.Writer, rows []model.ChartRow) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV.
func ReadCSV(path string) ([]model.ChartRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCSV(f)
}

// DecodeCSV parses header and rows produced by EncodeCSV.
func DecodeCSV(r io.Reader) ([]model.ChartRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, err
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected csv header %q", header)
	}

	var rows []model.ChartRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, model.ChartRow{
			CurrentRank:  rec[0],
			PreviousRank: rec[1],
			Title:        rec[2],
			Artist:       rec[3],
		})
	}
}
