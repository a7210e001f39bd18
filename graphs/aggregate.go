// Package graphs computes the descriptive aggregates for the attendance
// report and renders them into a multi-page PDF document. The aggregation
// functions are pure so they can be verified against the classifier's counts
// without touching the drawing code.
package graphs

import (
	"fmt"
	"strings"

	"defaulter-server-go/dataset"
)

// MissingColumnError reports a column the report depends on that is absent
// from the dataset.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

// GenderCounts is the gender split of a dataset. Values other than "Male"
// and "Female" (including blanks) are counted in Other rather than dropped.
type GenderCounts struct {
	Male   int
	Female int
	Other  int
}

// Total returns the number of counted rows.
func (g GenderCounts) Total() int { return g.Male + g.Female + g.Other }

// CountGenders tallies the Gender column.
func CountGenders(ds *dataset.Dataset) (GenderCounts, error) {
	idx, ok := ds.ColumnIndex(dataset.ColGender)
	if !ok {
		return GenderCounts{}, &MissingColumnError{Column: dataset.ColGender}
	}

	var counts GenderCounts
	for i := range ds.Rows {
		switch strings.TrimSpace(ds.Cell(i, idx)) {
		case "Male":
			counts.Male++
		case "Female":
			counts.Female++
		default:
			counts.Other++
		}
	}
	return counts, nil
}

// CountDefaulters recomputes the defaulter split from the attendance column
// and the given threshold. For a dataset classified with the same threshold
// the counts match the classifier's summary exactly. Cells that do not parse
// as numbers count as non-defaulters,mirroring a >= comparison failing.
func CountDefaulters(ds *dataset.Dataset, threshold float64) (defaulters, nonDefaulters int, err error) {
	idx, ok := ds.ColumnIndex(dataset.ColAttendance)
	if !ok {
		return 0, 0, &MissingColumnError{Column: dataset.ColAttendance}
	}

	for i := range ds.Rows {
		pct, err := ds.Float(i, idx)
		if err == nil && pct < threshold {
			defaulters++
		} else {
			nonDefaulters++
		}
	}
	return defaulters, nonDefaulters, nil
}

// Series is one scatter series: attendance percentages in row order, x-axis
// being the rank index within the series.
type Series struct {
	Values []float64
}

// Mean returns the average value, or 0 for an empty series. The count
// annotation on the scatter panel sits at this height.
func (s Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// DefaulterScatter splits defaulting students' attendance into Female and
// Male series. Rows with any other gender value are excluded from both
// series (they still appear in the gender pie's Other bucket).
func DefaulterScatter(ds *dataset.Dataset, threshold float64) (female, male Series, err error) {
	attIdx, ok := ds.ColumnIndex(dataset.ColAttendance)
	if !ok {
		return Series{}, Series{}, &MissingColumnError{Column: dataset.ColAttendance}
	}
	genderIdx, hasGender := ds.ColumnIndex(dataset.ColGender)
	if !hasGender {
		// Degraded mode: no gender column means both series stay empty.
		return Series{}, Series{}, nil
	}

	for i := range ds.Rows {
		pct, err := ds.Float(i, attIdx)
		if err != nil || pct >= threshold {
			continue
		}
		switch strings.TrimSpace(ds.Cell(i, genderIdx)) {
		case "Female":
			female.Values = append(female.Values, pct)
		case "Male":
			male.Values = append(male.Values, pct)
		}
	}
	return female, male, nil
}
