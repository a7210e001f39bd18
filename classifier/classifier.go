// Package classifier contains the core classification routine: annotate each
// student row as Defaulter or Non-Defaulter against an attendance threshold
// and report the aggregate counts.
package classifier

import (
	"fmt"
	"strings"

	"defaulter-server-go/dataset"
	"defaulter-server-go/models"
)

// DefaultThreshold is the policy default attendance cutoff.
const DefaultThreshold = 75.0

// SchemaError reports required columns missing from the input table.
type SchemaError struct {
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ValueError reports a cell that could not be read as a number.
type ValueError struct {
	Row    int
	Column string
	Value  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("row %d: invalid %q value %q", e.Row, e.Column, e.Value)
}

// Classify annotates every row of ds with a Classification column:
// Defaulter when Attendance Percentage is strictly below threshold,
// Non-Defaulter otherwise (a value equal to the threshold is not a
// defaulter). The input dataset is not modified; the returned dataset is a
// new table. The summary counts always sum to the row count.
func Classify(ds *dataset.Dataset, threshold float64) (*dataset.Dataset, models.Summary, error) {
	attIdx, ok := ds.ColumnIndex(dataset.ColAttendance)
	if !ok {
		return nil, models.Summary{}, &SchemaError{Columns: []string{dataset.ColAttendance}}
	}

	values := make([]string, len(ds.Rows))
	summary := models.Summary{
		TotalStudents: len(ds.Rows),
		Threshold:     threshold,
	}

	for i := range ds.Rows {
		pct, err := ds.Float(i, attIdx)
		if err != nil {
			return nil, models.Summary{}, &ValueError{Row: i + 1, Column: dataset.ColAttendance, Value: ds.Cell(i, attIdx)}
		}
		if pct < threshold {
			values[i] = dataset.Defaulter
			summary.DefaulterCount++
		} else {
			values[i] = dataset.NonDefaulter
			summary.NonDefaulterCount++
		}
	}

	out, err := ds.WithColumn(dataset.ColClassification, values)
	if err != nil {
		return nil, models.Summary{}, err
	}
	return out, summary, nil
}

// Defaulters returns the rows of a classified dataset marked Defaulter.
func Defaulters(ds *dataset.Dataset) (*dataset.Dataset, error) {
	clsIdx, ok := ds.ColumnIndex(dataset.ColClassification)
	if !ok {
		return nil, &SchemaError{Columns: []string{dataset.ColClassification}}
	}
	return ds.Filter(func(row int) bool {
		return ds.Cell(row, clsIdx) == dataset.Defaulter
	}), nil
}
