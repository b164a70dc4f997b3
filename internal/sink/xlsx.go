package sink

import (
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"songrank/internal/model"
)

// SheetName is the worksheet holding the chart in XLSX output.
const SheetName = "新歌日榜"

// XLSXPath returns the workbook path that mirrors csvPath. It never equals
// csvPath: a CSV already named *.xlsx gets a second extension.
func XLSXPath(csvPath string) string {
	ext := filepath.Ext(csvPath)
	if strings.EqualFold(ext, ".xlsx") {
		return csvPath + ".xlsx"
	}
	return strings.TrimSuffix(csvPath, ext) + ".xlsx"
}

// WriteXLSX writes the same header and rows as WriteCSV into a workbook.
func WriteXLSX(path string, rows []model.ChartRow) (err error) {
	if err := ensureParent(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &Error{Path: path, Op: "close", Err: cerr}
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return &Error{Path: path, Op: "write", Err: err}
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return &Error{Path: path, Op: "write", Err: err}
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &Error{Path: path, Op: "write", Err: err}
		}
		// Ranks stay text so "NEW" and "01" survive unchanged.
		values := []interface{}{r.CurrentRank, r.PreviousRank, r.Title, r.Artist}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return &Error{Path: path, Op: "write", Err: err}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return &Error{Path: path, Op: "save", Err: err}
	}
	return nil
}
