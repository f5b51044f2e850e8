package report

import (
	"strconv"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/user/nessus2xlsx/pkg/engine"
)

// Format reopens the workbook at path and applies the layout: column
// widths sized to content, wrapped top-aligned text, a bold bordered header
// and data rows filled by severity. The file is saved in place.
func Format(path string, opts Options) error {
	log := opts.log()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		log.Debug("Workbook is empty, nothing to format")
		return nil
	}

	for c, width := range columnWidths(rows, cols, opts.maxWidth()) {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}

	styles, err := newStyles(f, opts.Colors)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	sevCol := -1
	for i, v := range rows[0] {
		if v == engine.SeverityColumn {
			sevCol = i
			break
		}
	}

	filled := 0
	for i, r := range rows {
		style := styles.base
		if i == 0 {
			style = styles.header
		} else if sevCol >= 0 {
			if s, ok := styles.fillFor(rowSeverity(log, r, sevCol, i+1)); ok {
				style = s
				filled++
			}
		}

		first, _ := excelize.CoordinatesToCellName(1, i+1)
		last, _ := excelize.CoordinatesToCellName(cols, i+1)
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}

	if err := f.Save(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	log.WithFields(logrus.Fields{
		"columns": cols,
		"rows":    len(rows) - 1,
		"filled":  filled,
	}).Debugf("Workbook formatted: %s", path)
	return nil
}

// columnWidths returns min(longest cell + 2, limit) for each column, counting
// the header.
func columnWidths(rows [][]string, cols, limit int) []int {
	widths := make([]int, cols)
	for c := 0; c < cols; c++ {
		longest := 0
		for _, r := range rows {
			if c < len(r) {
				if n := utf8.RuneCountInString(r[c]); n > longest {
					longest = n
				}
			}
		}
		widths[c] = longest + 2
		if widths[c] > limit {
			widths[c] = limit
		}
	}
	return widths
}

// rowSeverity reads the severity cell of a data row, returning -1 when it
// is missing or not a number.
func rowSeverity(log *logrus.Logger, row []string, col, rowNum int) int {
	if col >= len(row) {
		return -1
	}
	sev, err := strconv.Atoi(row[col])
	if err != nil {
		log.WithField("row", rowNum).Warnf("Unreadable severity %q, row left unfilled", row[col])
		return -1
	}
	return sev
}

type styleSet struct {
	header int
	base   int
	fills  map[int]int
}

func (s styleSet) fillFor(sev int) (int, bool) {
	id, ok := s.fills[sev]
	return id, ok
}

func newStyles(f *excelize.File, colors map[int]string) (styleSet, error) {
	align := &excelize.Alignment{WrapText: true, Vertical: "top"}

	base, err := f.NewStyle(&excelize.Style{Alignment: align})
	if err != nil {
		return styleSet{}, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Alignment: align,
		Font:      &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styleSet{}, err
	}

	set := styleSet{header: header, base: base, fills: make(map[int]int, len(colors))}
	for sev, color := range colors {
		id, err := f.NewStyle(&excelize.Style{
			Alignment: align,
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return styleSet{}, err
		}
		set.fills[sev] = id
	}
	return set, nil
}
