package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Table is a header row plus data rows read from a CSV or XLSX file. Data
// rows are padded or truncated to the header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header matching name ignoring case and
// surrounding space, or -1.
func (t *Table) Column(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// TableOptions selects the worksheet of an XLSX file; the first sheet is used
// when Sheet is empty. CSV files ignore it.
type TableOptions struct {
	Sheet string
}

// ReadTable reads a .csv or .xlsx file. Blank rows are dropped and cells are
// trimmed.
func ReadTable(path string, opts TableOptions) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVFile(path)
	case ".xlsx":
		rows, err = readXLSXFile(path, opts.Sheet)
	default:
		return nil, eris.Errorf("table: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return newTable(rows, path)
}

func newTable(raw [][]string, source string) (*Table, error) {
	var rows [][]string
	for _, r := range raw {
		for i := range r {
			r[i] = strings.TrimSpace(r[i])
		}
		if strings.Join(r, "") != "" {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("table: %s has no header row", source)
	}

	t := &Table{Header: rows[0]}
	width := len(t.Header)
	for _, r := range rows[1:] {
		row := make([]string, width)
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSVFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: read %s", path)
	}
	return parseCSV(bytes.TrimPrefix(data, utf8BOM))
}

// parseCSV reads comma separated records with '#' comment lines and ragged rows.
func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "table: parse csv")
		}
		rows = append(rows, rec)
	}
}

func readXLSXFile(path, sheetName string) ([][]string, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open workbook %s", path)
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.Errorf("table: workbook %s has no sheets", path)
	}

	sheet := wb.Sheets[0]
	if sheetName != "" {
		sheet = nil
		for _, s := range wb.Sheets {
			if strings.EqualFold(s.Name, sheetName) {
				sheet = s
				break
			}
		}
		if sheet == nil {
			return nil, eris.Errorf("table: sheet %q not found in %s", sheetName, path)
		}
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				cells[i] = c.String()
			}
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
