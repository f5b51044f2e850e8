package report

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/user/nessus2xlsx/pkg/engine"
	"github.com/user/nessus2xlsx/pkg/logger"
)

func sampleRows() []engine.Row {
	agg := engine.NewAggregation(nil)
	for _, f := range []engine.Finding{
		{PluginID: "1000", PluginName: "SSH Weak Ciphers", Severity: 4, HostIP: "10.0.0.2", Port: "22", Protocol: "tcp", Service: "ssh"},
		{PluginID: "1000", PluginName: "SSH Weak Ciphers", Severity: 4, HostIP: "10.0.0.1", Port: "22", Protocol: "tcp", Service: "ssh"},
		{PluginID: "2000", PluginName: "TLS 1.0", Severity: 3, HostIP: "10.0.0.1", Port: "443", Protocol: "tcp", Service: "www",
			Description: strings.Repeat("x", 120)},
		{PluginID: "3000", PluginName: "ICMP Timestamp", Severity: 1, HostIP: "10.0.0.3", Port: "0", Protocol: "icmp", Service: "general"},
	} {
		agg.AddFinding(f)
	}
	return agg.Rows()
}

func export(t *testing.T, rows []engine.Row, opts Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Export(path, rows, opts))
	return path
}

func open(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func fillColor(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	if style.Fill.Pattern == 0 || len(style.Fill.Color) == 0 {
		return ""
	}
	return strings.ToUpper(style.Fill.Color[0])
}

func TestExportWritesHeaderAndRows(t *testing.T) {
	f := open(t, export(t, sampleRows(), DefaultOptions()))

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, engine.Columns, rows[0])

	assert.Equal(t, "1000", rows[1][0])
	assert.Equal(t, "4", rows[1][2])
	assert.Equal(t, "2", rows[1][3])
	assert.Equal(t, "10.0.0.1 (22/ssh)\n10.0.0.2 (22/ssh)", rows[1][4])
	assert.Equal(t, "2000", rows[2][0])
	assert.Equal(t, "3000", rows[3][0])
}

func TestExportColumnWidths(t *testing.T) {
	f := open(t, export(t, sampleRows(), DefaultOptions()))

	// Plugin ID: the header is the longest text.
	w, err := f.GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Plugin ID")+2), w)

	// Description holds a 120 character cell.
	w, err = f.GetColWidth("Sheet1", "H")
	require.NoError(t, err)
	assert.Equal(t, float64(70), w)
}

func TestExportCustomWidthLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxColumnWidth = 30
	f := open(t, export(t, sampleRows(), opts))

	w, err := f.GetColWidth("Sheet1", "H")
	require.NoError(t, err)
	assert.Equal(t, float64(30), w)
}

func TestExportFillsRowsBySeverity(t *testing.T) {
	f := open(t, export(t, sampleRows(), DefaultOptions()))

	cols := len(engine.Columns)
	want := map[int]string{2: "FF9999", 3: "FFCC99", 4: "CCFFCC"}
	for row, color := range want {
		for col := 1; col <= cols; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(fillColor(t, f, "Sheet1", cell), color), "cell %s", cell)
		}
	}

	assert.Empty(t, fillColor(t, f, "Sheet1", "A1"), "header is not filled")
}

func TestExportAlignment(t *testing.T) {
	f := open(t, export(t, sampleRows(), DefaultOptions()))

	for _, cell := range []string{"A1", "E2", "M4"} {
		id, err := f.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, style.Alignment, cell)
		assert.True(t, style.Alignment.WrapText, cell)
		assert.Equal(t, "top", style.Alignment.Vertical, cell)
	}
}

func TestExportSeverityOutsideTableIsUnfilled(t *testing.T) {
	rows := []engine.Row{{PluginID: "1", Severity: 7}, {PluginID: "2", Severity: 2}}
	f := open(t, export(t, rows, DefaultOptions()))

	assert.Empty(t, fillColor(t, f, "Sheet1", "A2"))
	assert.True(t, strings.HasSuffix(fillColor(t, f, "Sheet1", "A3"), "FFFF99"))
}

func TestExportNoRows(t *testing.T) {
	f := open(t, export(t, nil, DefaultOptions()))

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, engine.Columns, rows[0])
}

func TestExportCustomSheetName(t *testing.T) {
	opts := DefaultOptions()
	opts.SheetName = "Findings"
	f := open(t, export(t, sampleRows(), opts))

	assert.Equal(t, []string{"Findings"}, f.GetSheetList())
	rows, err := f.GetRows("Findings")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestExportTwiceIsStable(t *testing.T) {
	rows := sampleRows()
	path := filepath.Join(t.TempDir(), "out.xlsx")

	snapshot := func() ([][]string, []string) {
		require.NoError(t, Export(path, rows, DefaultOptions()))
		f := open(t, path)
		content, err := f.GetRows("Sheet1")
		require.NoError(t, err)
		var fills []string
		for r := 1; r <= len(content); r++ {
			cell, _ := excelize.CoordinatesToCellName(1, r)
			fills = append(fills, fillColor(t, f, "Sheet1", cell))
		}
		return content, fills
	}

	content1, fills1 := snapshot()
	content2, fills2 := snapshot()
	assert.Equal(t, content1, content2)
	assert.Equal(t, fills1, fills2)
}

func TestWriteUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.xlsx")

	err := Export(path, sampleRows(), DefaultOptions())
	require.Error(t, err)

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, path, werr.Path)
}

func TestFormatMissingWorkbook(t *testing.T) {
	err := Format(filepath.Join(t.TempDir(), "absent.xlsx"), DefaultOptions())

	var werr *WriteError
	assert.True(t, errors.As(err, &werr))
}

func TestRowSeverity(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput(&buf, false)

	assert.Equal(t, 3, rowSeverity(log, []string{"x", "3"}, 1, 2))
	assert.Equal(t, -1, rowSeverity(log, []string{"x"}, 1, 2))
	assert.Equal(t, -1, rowSeverity(log, []string{"x", "high"}, 1, 5))
	assert.Contains(t, buf.String(), "Unreadable severity")
}

func TestColumnWidths(t *testing.T) {
	rows := [][]string{
		{"Plugin ID", "Name"},
		{"1", "héllo wörld"},
		{"22"},
	}
	assert.Equal(t, []int{11, 13}, columnWidths(rows, 2, 70))
	assert.Equal(t, []int{5, 5}, columnWidths(rows, 2, 5))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, "out.xlsx", sampleRows())

	out := buf.String()
	assert.Contains(t, out, "Exported to: out.xlsx")
	assert.Contains(t, out, "3 plugins")
	assert.Contains(t, out, "Critical: 1")
	assert.Contains(t, out, "High: 1")
	assert.Contains(t, out, "Medium: 0")
	assert.Contains(t, out, "Low: 1")
}

func TestExportHeaderStyle(t *testing.T) {
	f := open(t, export(t, sampleRows(), DefaultOptions()))

	id, err := f.GetCellStyle("Sheet1", "C1")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Len(t, style.Border, 4)
	require.NotNil(t, style.Alignment)
	assert.True(t, style.Alignment.WrapText)

	id, err = f.GetCellStyle("Sheet1", "C2")
	require.NoError(t, err)
	style, err = f.GetStyle(id)
	require.NoError(t, err)
	assert.True(t, style.Font == nil || !style.Font.Bold, "data rows are not bold")
}

func TestExportInvalidSheetName(t *testing.T) {
	for _, name := range []string{"bad:name", strings.Repeat("s", 40)} {
		opts := DefaultOptions()
		opts.SheetName = name

		err := Export(filepath.Join(t.TempDir(), "out.xlsx"), sampleRows(), opts)
		var werr *WriteError
		require.True(t, errors.As(err, &werr), "sheet %q: got %v", name, err)
		assert.Contains(t, err.Error(), "sheet name")
	}
}

var truncatedMarker = regexp.MustCompile(`… \(truncated, (\d+) more lines\)$`)

func TestExportTruncatesOversizedCells(t *testing.T) {
	const findings = 3000

	agg := engine.NewAggregation(nil)
	for i := 0; i < findings; i++ {
		agg.AddFinding(engine.Finding{
			PluginID: "1",
			Severity: 2,
			HostIP:   fmt.Sprintf("10.%d.%d.%d", i/65536, (i/256)%256, i%256),
			Port:     "443",
			Protocol: "tcp",
			Service:  "www",
			Output:   "TLSv1.0 is enabled on this service",
		})
	}
	rows := agg.Rows()
	require.Greater(t, utf8.RuneCountInString(rows[0].AffectedIPs), excelize.TotalCellChars)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Log = logger.NewWithOutput(&buf, false)
	f := open(t, export(t, rows, opts))

	got, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, strconv.Itoa(findings), got[1][3])

	cell := got[1][4]
	assert.LessOrEqual(t, utf8.RuneCountInString(cell), excelize.TotalCellChars)
	m := truncatedMarker.FindStringSubmatch(cell)
	require.NotNil(t, m, "truncation marker missing")
	dropped, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	kept := len(strings.Split(cell, "\n")) - 1
	assert.Equal(t, findings, kept+dropped, "kept and dropped targets add up to the count")

	assert.LessOrEqual(t, utf8.RuneCountInString(got[1][5]), excelize.TotalCellChars)
	assert.Regexp(t, truncatedMarker, got[1][5])

	logs := buf.String()
	assert.Contains(t, logs, "truncated")
	assert.Contains(t, logs, "column=\"Affected IPs\"")
	assert.Contains(t, logs, "column=Output")
	assert.Contains(t, logs, "plugin=1")
}

func TestFitCell(t *testing.T) {
	s, dropped, truncated := fitCell("short")
	assert.Equal(t, "short", s)
	assert.Zero(t, dropped)
	assert.False(t, truncated)

	long := strings.Repeat("y", excelize.TotalCellChars+10)
	s, dropped, truncated = fitCell(long)
	assert.True(t, truncated)
	assert.Zero(t, dropped)
	assert.LessOrEqual(t, utf8.RuneCountInString(s), excelize.TotalCellChars)
	assert.True(t, strings.HasSuffix(s, "… (truncated, 0 more lines)"))
}
