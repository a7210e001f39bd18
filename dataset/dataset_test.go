package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := "Name,Attendance Percentage,Email\nAlice,60,alice@x.com\nBob,92.5,bob@x.com\n"

	ds, err := Parse(strings.NewReader(input), "csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", ColAttendance, ColEmail}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "Alice", ds.Cell(0, 0))

	attIdx, ok := ds.ColumnIndex(ColAttendance)
	require.True(t, ok)
	v, err := ds.Float(1, attIdx)
	require.NoError(t, err)
	assert.Equal(t, 92.5, v)
}

func TestParseCSVRaggedRows(t *testing.T) {
	input := "Name,Attendance Percentage,Email\nAlice,60\n"

	ds, err := Parse(strings.NewReader(input), "csv")
	require.NoError(t, err)
	assert.Equal(t, "", ds.Cell(0, 2))
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), "pdf")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseEmptyCSV(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "csv")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseGarbageAsExcel(t *testing.T) {
	_, err := Parse(strings.NewReader("definitely not a zip archive"), "xlsx")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestColumnIndexMissing(t *testing.T) {
	ds := &Dataset{Columns: []string{"Name"}}
	_, ok := ds.ColumnIndex(ColAttendance)
	assert.False(t, ok)
}

func TestWithColumnDoesNotMutateReceiver(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"Name"},
		Rows:    [][]string{{"Alice"}, {"Bob"}},
	}

	out, err := ds.WithColumn(ColClassification, []string{Defaulter, NonDefaulter})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name"}, ds.Columns)
	assert.Equal(t, []string{"Name", ColClassification}, out.Columns)
	assert.Equal(t, Defaulter, out.Cell(0, 1))
	assert.Equal(t, NonDefaulter, out.Cell(1, 1))
}

func TestWithColumnLengthMismatch(t *testing.T) {
	ds := &Dataset{Columns: []string{"Name"}, Rows: [][]string{{"Alice"}}}
	_, err := ds.WithColumn(ColClassification, []string{"a", "b"})
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"Name"},
		Rows:    [][]string{{"Alice"}, {"Bob"}, {"Cara"}},
	}

	out := ds.Filter(func(row int) bool { return row != 1 })

	assert.Len(t, out.Rows, 2)
	assert.Equal(t, "Alice", out.Cell(0, 0))
	assert.Equal(t, "Cara", out.Cell(1, 0))
	assert.Len(t, ds.Rows, 3)
}

func TestRecords(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"Name", ColAttendance},
		Rows:    [][]string{{"Alice", "60"}},
	}

	recs := ds.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Alice", recs[0]["Name"])
	assert.Equal(t, 60.0, recs[0][ColAttendance])
}

// Export then re-parse must preserve every column, including the derived
// Classification column; the xlsx file is the sole carrier of classification
// state between requests.
func TestWriteXLSXRoundTrip(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"Name", ColAttendance, ColClassification},
		Rows: [][]string{
			{"Alice", "60", Defaulter},
			{"Bob", "92.5", NonDefaulter},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ds.WriteXLSX(&buf))

	back, err := Parse(bytes.NewReader(buf.Bytes()), "xlsx")
	require.NoError(t, err)

	assert.Equal(t, ds.Columns, back.Columns)
	require.Len(t, back.Rows, 2)

	clsIdx, ok := back.ColumnIndex(ColClassification)
	require.True(t, ok)
	assert.Equal(t, Defaulter, back.Cell(0, clsIdx))
	assert.Equal(t, NonDefaulter, back.Cell(1, clsIdx))

	attIdx, _ := back.ColumnIndex(ColAttendance)
	v, err := back.Float(1, attIdx)
	require.NoError(t, err)
	assert.Equal(t, 92.5, v)
}

func TestWriteXLSXEmptyDatasetIsHeaderOnly(t *testing.T) {
	ds := &Dataset{Columns: []string{"Name", ColAttendance}}

	var buf bytes.Buffer
	require.NoError(t, ds.WriteXLSX(&buf))

	back, err := Parse(bytes.NewReader(buf.Bytes()), "xlsx")
	require.NoError(t, err)
	assert.Equal(t, ds.Columns, back.Columns)
	assert.Empty(t, back.Rows)
}
