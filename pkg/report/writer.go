package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/user/nessus2xlsx/pkg/engine"
)

// truncationSuffixRoom is kept free at the end of an oversized cell for the
// "truncated" marker.
const truncationSuffixRoom = 64

// Export writes the rows to path and applies formatting.
func Export(path string, rows []engine.Row, opts Options) error {
	if err := Write(path, rows, opts); err != nil {
		return err
	}
	return Format(path, opts)
}

// Write saves a single-sheet workbook with a header row followed by one
// row per plugin. Any existing file at path is replaced.
func Write(path string, rows []engine.Row, opts Options) error {
	log := opts.log()

	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.sheet()
	if sheet != f.GetSheetName(0) {
		if _, err := f.NewSheet(sheet); err != nil {
			return &WriteError{Path: path, Err: fmt.Errorf("sheet name %q: %w", sheet, err)}
		}
		f.DeleteSheet(f.GetSheetName(0))
		f.SetActiveSheet(0)
	}

	header := make([]interface{}, len(engine.Columns))
	for i, c := range engine.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		values := r.Values()
		for c, v := range values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if cut, dropped, truncated := fitCell(s); truncated {
				values[c] = cut
				log.WithFields(logrus.Fields{
					"plugin":        r.PluginID,
					"column":        engine.Columns[c],
					"length":        utf8.RuneCountInString(s),
					"dropped_lines": dropped,
				}).Warnf("Cell exceeds %d characters, truncated", excelize.TotalCellChars)
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	log.WithField("rows", len(rows)).Debugf("Workbook written: %s", path)
	return nil
}

// fitCell shortens s to the spreadsheet cell limit, keeping whole lines and
// ending with a marker that says how many lines were dropped.
func fitCell(s string) (string, int, bool) {
	if utf8.RuneCountInString(s) <= excelize.TotalCellChars {
		return s, 0, false
	}

	budget := excelize.TotalCellChars - truncationSuffixRoom
	lines := strings.Split(s, "\n")

	kept, size := 0, 0
	for kept < len(lines) {
		n := utf8.RuneCountInString(lines[kept])
		if kept > 0 {
			n++
		}
		if size+n > budget {
			break
		}
		size += n
		kept++
	}

	var head string
	if kept == 0 {
		// A single line longer than the limit.
		head = string([]rune(lines[0])[:budget])
		kept = 1
	} else {
		head = strings.Join(lines[:kept], "\n")
	}
	dropped := len(lines) - kept
	return fmt.Sprintf("%s\n… (truncated, %d more lines)", head, dropped), dropped, true
}
