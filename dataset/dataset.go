// Package dataset provides the tabular data structure shared by every
// pipeline stage: an ordered header plus string-valued rows, matching what
// excelize and encoding/csv naturally produce. Column names used across the
// pipeline are centralized here so downstream stages share one schema
// contract instead of re-deriving it.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Well-known column names.
const (
	ColAttendance     = "Attendance Percentage"
	ColGender         = "Gender"
	ColEmail          = "Email"
	ColRollNumber     = "Roll Number"
	ColName           = "Name"
	ColClassification = "Classification"
)

// Classification values.
const (
	Defaulter    = "Defaulter"
	NonDefaulter = "Non-Defaulter"
)

// ParseError reports raw input that could not be read as a tabular dataset.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to read file: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Dataset is an in-memory table: a header row and data rows. Rows may be
// ragged (shorter than the header); use Cell for safe access.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// ParseFile reads a tabular file from disk, choosing the parser from the
// file extension.
func ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Parse(f, ext)
}

// Parse reads a tabular dataset from r. ext selects the container format:
// "xlsx"/"xls" are read with excelize (first sheet, first row is the
// header), "csv" with encoding/csv.
func Parse(r io.Reader, ext string) (*Dataset, error) {
	switch strings.ToLower(ext) {
	case "xlsx", "xls":
		return parseExcel(r)
	case "csv":
		return parseCSV(r)
	default:
		return nil, &ParseError{Err: fmt.Errorf("unsupported file extension %q", ext)}
	}
}

func parseExcel(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &ParseError{Err: errors.New("file does not contain any sheets")}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Err: errors.New("file contains no header row")}
	}

	return &Dataset{Columns: rows[0], Rows: rows[1:]}, nil
}

func parseCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, same as the excel path

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Err: errors.New("file contains no header row")}
	}

	return &Dataset{Columns: records[0], Rows: records[1:]}, nil
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, col := range d.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the value at (row, col), or "" when the row is shorter than
// the header.
func (d *Dataset) Cell(row, col int) string {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return ""
	}
	return d.Rows[row][col]
}

// Float parses the cell at (row, col) as a number.
func (d *Dataset) Float(row, col int) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(d.Cell(row, col)), 64)
}

// WithColumn returns a new dataset with an extra column appended; the
// receiver is left untouched. len(values) must equal len(d.Rows). Short rows
// are padded so the new column lands at a consistent position.
func (d *Dataset) WithColumn(name string, values []string) (*Dataset, error) {
	if len(values) != len(d.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(d.Rows))
	}

	out := &Dataset{
		Columns: make([]string, 0, len(d.Columns)+1),
		Rows:    make([][]string, 0, len(d.Rows)),
	}
	out.Columns = append(out.Columns, d.Columns...)
	out.Columns = append(out.Columns, name)

	for i, row := range d.Rows {
		newRow := make([]string, len(d.Columns)+1)
		copy(newRow, row)
		newRow[len(d.Columns)] = values[i]
		out.Rows = append(out.Rows, newRow)
	}
	return out, nil
}

// Filter returns a new dataset containing only the rows for which keep
// returns true. Column order is preserved; the receiver is not modified.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	for i := range d.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append([]string(nil), d.Rows[i]...))
		}
	}
	return out
}

// Records converts the rows to JSON-friendly objects keyed by column name.
// Numeric-looking cells become numbers, everything else stays a string.
func (d *Dataset) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(d.Rows))
	for i := range d.Rows {
		rec := make(map[string]interface{}, len(d.Columns))
		for j, col := range d.Columns {
			cell := d.Cell(i, j)
			if f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil && cell != "" {
				rec[col] = f
			} else {
				rec[col] = cell
			}
		}
		records = append(records, rec)
	}
	return records
}

// WriteXLSX serializes the dataset as a single-sheet workbook: header row
// first, data rows in order. An empty dataset produces a header-only file.
func (d *Dataset) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(d.Columns))
	for i, col := range d.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i := range d.Rows {
		row := make([]interface{}, len(d.Columns))
		for j := range d.Columns {
			cell := d.Cell(i, j)
			if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil && cell != "" {
				row[j] = v
			} else {
				row[j] = cell
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell address for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
