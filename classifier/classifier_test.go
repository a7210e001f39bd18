package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defaulter-server-go/dataset"
)

func attendanceDataset(values ...string) *dataset.Dataset {
	ds := &dataset.Dataset{Columns: []string{"Name", dataset.ColAttendance}}
	for i, v := range values {
		ds.Rows = append(ds.Rows, []string{string(rune('A' + i)), v})
	}
	return ds
}

func TestClassifyPartitionsRows(t *testing.T) {
	ds := attendanceDataset("60", "80", "75")

	classified, summary, err := Classify(ds, 75)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalStudents)
	assert.Equal(t, 1, summary.DefaulterCount)
	assert.Equal(t, 2, summary.NonDefaulterCount)
	assert.Equal(t, 75.0, summary.Threshold)
	assert.Equal(t, summary.TotalStudents, summary.DefaulterCount+summary.NonDefaulterCount)

	clsIdx, ok := classified.ColumnIndex(dataset.ColClassification)
	require.True(t, ok)
	assert.Equal(t, dataset.Defaulter, classified.Cell(0, clsIdx))
	assert.Equal(t, dataset.NonDefaulter, classified.Cell(1, clsIdx))
	assert.Equal(t, dataset.NonDefaulter, classified.Cell(2, clsIdx))
}

func TestClassifyBoundaryEqualsThresholdIsNotDefaulter(t *testing.T) {
	ds := attendanceDataset("75")

	classified, summary, err := Classify(ds, 75)
	require.NoError(t, err)

	clsIdx, _ := classified.ColumnIndex(dataset.ColClassification)
	assert.Equal(t, dataset.NonDefaulter, classified.Cell(0, clsIdx))
	assert.Equal(t, 0, summary.DefaulterCount)
	assert.Equal(t, 1, summary.NonDefaulterCount)
}

func TestClassifyMissingAttendanceColumn(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: []string{"Name", "Gender"},
		Rows:    [][]string{{"A", "Male"}},
	}

	classified, _, err := Classify(ds, 75)
	require.Error(t, err)
	assert.Nil(t, classified)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Columns, dataset.ColAttendance)
	assert.Contains(t, err.Error(), dataset.ColAttendance)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	ds := attendanceDataset("60", "80")
	originalColumns := len(ds.Columns)

	classified, _, err := Classify(ds, 75)
	require.NoError(t, err)

	assert.Len(t, ds.Columns, originalColumns)
	assert.Len(t, ds.Rows[0], originalColumns)
	assert.NotSame(t, ds, classified)
	_, ok := ds.ColumnIndex(dataset.ColClassification)
	assert.False(t, ok)
}

func TestClassifyDeterministic(t *testing.T) {
	ds := attendanceDataset("10", "99.5", "75", "74.9")

	first, firstSummary, err := Classify(ds, 75)
	require.NoError(t, err)
	second, secondSummary, err := Classify(ds, 75)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}

func TestClassifyEmptyDataset(t *testing.T) {
	ds := attendanceDataset()

	classified, summary, err := Classify(ds, 75)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalStudents)
	assert.Empty(t, classified.Rows)
	_, ok := classified.ColumnIndex(dataset.ColClassification)
	assert.True(t, ok)
}

func TestClassifyInvalidAttendanceValue(t *testing.T) {
	ds := attendanceDataset("60", "not-a-number")

	_, _, err := Classify(ds, 75)
	require.Error(t, err)

	var valueErr *ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, 2, valueErr.Row)
	assert.Equal(t, dataset.ColAttendance, valueErr.Column)
}

func TestDefaulters(t *testing.T) {
	ds := attendanceDataset("60", "80", "50")
	classified, _, err := Classify(ds, 75)
	require.NoError(t, err)

	defaulters, err := Defaulters(classified)
	require.NoError(t, err)

	assert.Len(t, defaulters.Rows, 2)
	attIdx, _ := defaulters.ColumnIndex(dataset.ColAttendance)
	assert.Equal(t, "60", defaulters.Cell(0, attIdx))
	assert.Equal(t, "50", defaulters.Cell(1, attIdx))
}

func TestDefaultersRequiresClassificationColumn(t *testing.T) {
	ds := attendanceDataset("60")

	_, err := Defaulters(ds)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Columns, dataset.ColClassification)
}
