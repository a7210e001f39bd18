package graphs

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"defaulter-server-go/dataset"
	"defaulter-server-go/models"
)

const (
	chartWidth  = 1024
	chartHeight = 640
	pieSize     = 640
)

var unsafeNameRunes = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Renderer produces the five-panel attendance report PDF. It is stateless;
// every call renders a fresh document with a fresh timestamped filename.
type Renderer struct{}

// Render builds the report for a classified dataset. It returns the PDF
// bytes and the artifact filename, which embeds the class name and a
// generation timestamp so repeated runs never overwrite each other.
//
// The dataset must carry an Attendance Percentage column. A missing Gender
// column degrades the gender panels to placeholders instead of aborting.
func (Renderer) Render(ds *dataset.Dataset, info models.ClassInfo) ([]byte, string, error) {
	if _, ok := ds.ColumnIndex(dataset.ColAttendance); !ok {
		return nil, "", &MissingColumnError{Column: dataset.ColAttendance}
	}

	genders, genderErr := CountGenders(ds)
	hasGender := genderErr == nil

	defCount, nonDefCount, err := CountDefaulters(ds, info.Threshold)
	if err != nil {
		return nil, "", err
	}

	female, male, err := DefaulterScatter(ds, info.Threshold)
	if err != nil {
		return nil, "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Student Attendance Report", false)
	pdf.SetAutoPageBreak(true, 15)

	if err := renderTitlePage(pdf, info, genders, hasGender); err != nil {
		return nil, "", err
	}
	if err := renderDefaulterPie(pdf, defCount, nonDefCount); err != nil {
		return nil, "", err
	}
	if err := renderDefaulterBar(pdf, defCount, nonDefCount, info.Threshold); err != nil {
		return nil, "", err
	}
	if err := renderScatter(pdf, female, male); err != nil {
		return nil, "", err
	}
	if err := renderDefaulterTable(pdf, ds, info.Threshold); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write PDF: %w", err)
	}

	class := unsafeNameRunes.ReplaceAllString(info.ClassName, "_")
	if class == "" {
		class = "class"
	}
	filename := fmt.Sprintf("Attendance_Report_%s_%s.pdf", class, time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func renderTitlePage(pdf *fpdf.Fpdf, info models.ClassInfo, genders GenderCounts, hasGender bool) error {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Student Attendance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Class: %s", info.ClassName), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Class Teacher: %s", info.TeacherName), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Distribution of Gender", "", 1, "C", false, 0, "")

	if !hasGender {
		return placeholder(pdf, "Gender data not available in this report.")
	}

	values := []chart.Value{
		{Value: float64(genders.Male), Label: pieLabel("Male", genders.Male, genders.Total())},
		{Value: float64(genders.Female), Label: pieLabel("Female", genders.Female, genders.Total())},
	}
	if genders.Other > 0 {
		values = append(values, chart.Value{Value: float64(genders.Other), Label: pieLabel("Other", genders.Other, genders.Total())})
	}
	if err := embedPie(pdf, "gender-pie", values, genders.Total()); err != nil {
		return err
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	explanation := fmt.Sprintf(
		"This pie chart shows the distribution of gender among students.\n"+
			"- Male students: %d\n- Female students: %d\n- Other/Unknown: %d\nTotal Students: %d",
		genders.Male, genders.Female, genders.Other, genders.Total())
	pdf.MultiCell(0, 6, explanation, "", "C", false)
	return pdf.Error()
}

func renderDefaulterPie(pdf *fpdf.Fpdf, defCount, nonDefCount int) error {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Attendance Category", "", 1, "C", false, 0, "")

	total := defCount + nonDefCount
	values := []chart.Value{
		{Value: float64(defCount), Label: pieLabel("Defaulter", defCount, total)},
		{Value: float64(nonDefCount), Label: pieLabel("Non-Defaulter", nonDefCount, total)},
	}
	if err := embedPie(pdf, "defaulter-pie", values, total); err != nil {
		return err
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	explanation := fmt.Sprintf(
		"This pie chart shows the distribution of defaulters among students.\n"+
			"- Defaulter students: %d\n- Non-defaulter students: %d\nTotal Students: %d",
		defCount, nonDefCount, total)
	pdf.MultiCell(0, 6, explanation, "", "C", false)
	return pdf.Error()
}

func renderDefaulterBar(pdf *fpdf.Fpdf, defCount, nonDefCount int, threshold float64) error {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Defaulter vs Non-Defaulter Counts", "", 1, "C", false, 0, "")

	total := defCount + nonDefCount
	if total == 0 {
		return placeholder(pdf, "No students to chart.")
	}

	maxCount := defCount
	if nonDefCount > maxCount {
		maxCount = nonDefCount
	}

	bar := chart.BarChart{
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 120,
		Background: chart.Style{
			Padding: chart.Box{Top: 30, Left: 30, Right: 30, Bottom: 30},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) + 1},
		},
		Bars: []chart.Value{
			{Value: float64(defCount), Label: "Defaulter", Style: chart.Style{FillColor: drawing.ColorRed, StrokeColor: drawing.ColorRed}},
			{Value: float64(nonDefCount), Label: "Non-Defaulter", Style: chart.Style{FillColor: drawing.ColorGreen, StrokeColor: drawing.ColorGreen}},
		},
	}

	var png bytes.Buffer
	if err := bar.Render(chart.PNG, &png); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	embedPNG(pdf, "defaulter-bar", png.Bytes(), 170)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	explanation := fmt.Sprintf(
		"This bar chart compares the counts of defaulters and non-defaulters based on attendance percentage:\n"+
			"- Defaulter: Students with attendance below %g%%\n"+
			"- Non-Defaulter: Students with attendance %g%% or higher\nTotal Students: %d",
		threshold, threshold, total)
	pdf.MultiCell(0, 6, explanation, "", "C", false)
	return pdf.Error()
}

func renderScatter(pdf *fpdf.Fpdf, female, male Series) error {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Defaulter Students Attendance (Separated by Gender)", "", 1, "C", false, 0, "")

	if len(female.Values)+len(male.Values) == 0 {
		return placeholder(pdf, "No defaulting students to plot.")
	}

	maxRank := len(female.Values)
	if len(male.Values) > maxRank {
		maxRank = len(male.Values)
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(maxRank) + 0.5},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			scatterSeries("Defaulter (Girls)", female, drawing.ColorRed),
			scatterSeries("Defaulter (Boys)", male, drawing.ColorBlue),
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: float64(len(female.Values)), YValue: female.Mean(), Label: fmt.Sprintf("Count: %d", len(female.Values))},
					{XValue: float64(len(male.Values)), YValue: male.Mean(), Label: fmt.Sprintf("Count: %d", len(male.Values))},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var png bytes.Buffer
	if err := graph.Render(chart.PNG, &png); err != nil {
		return fmt.Errorf("failed to render scatter chart: %w", err)
	}
	embedPNG(pdf, "defaulter-scatter", png.Bytes(), 170)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6,
		"This scatter plot shows the attendance percentage of defaulter students, separated by gender.\n"+
			"- Red points represent defaulter girls.\n- Blue points represent defaulter boys.",
		"", "C", false)
	return pdf.Error()
}

func renderDefaulterTable(pdf *fpdf.Fpdf, ds *dataset.Dataset, threshold float64) error {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Defaulter Students Table", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	attIdx, _ := ds.ColumnIndex(dataset.ColAttendance)
	rollIdx, hasRoll := ds.ColumnIndex(dataset.ColRollNumber)
	nameIdx, hasName := ds.ColumnIndex(dataset.ColName)

	colWidths := []float64{45, 90, 45}
	headers := []string{dataset.ColRollNumber, dataset.ColName, dataset.ColAttendance}

	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for i := range ds.Rows {
		pct, err := ds.Float(i, attIdx)
		if err != nil || pct >= threshold {
			continue
		}
		roll, name := "", ""
		if hasRoll {
			roll = ds.Cell(i, rollIdx)
		}
		if hasName {
			name = ds.Cell(i, nameIdx)
		}
		pdf.CellFormat(colWidths[0], 7, roll, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 7, ds.Cell(i, attIdx), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Error()
}

func scatterSeries(name string, s Series, color drawing.Color) chart.ContinuousSeries {
	xs := make([]float64, len(s.Values))
	for i := range s.Values {
		xs[i] = float64(i)
	}
	return chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    6,
			DotColor:    color,
		},
		XValues: xs,
		YValues: append([]float64(nil), s.Values...),
	}
}

func pieLabel(name string, count, total int) string {
	if total == 0 {
		return name
	}
	return fmt.Sprintf("%s (%.1f%%)", name, 100*float64(count)/float64(total))
}

// embedPie renders a pie chart into the current page, or a placeholder when
// there is nothing to slice.
func embedPie(pdf *fpdf.Fpdf, name string, values []chart.Value, total int) error {
	if total == 0 {
		return placeholder(pdf, "No data to chart.")
	}

	// Zero-count slices add nothing but confuse the slice layout.
	nonZero := values[:0:0]
	for _, v := range values {
		if v.Value > 0 {
			nonZero = append(nonZero, v)
		}
	}

	pie := chart.PieChart{
		Width:  pieSize,
		Height: pieSize,
		Values: nonZero,
	}
	var png bytes.Buffer
	if err := pie.Render(chart.PNG, &png); err != nil {
		return fmt.Errorf("failed to render pie chart %s: %w", name, err)
	}
	embedPNG(pdf, name, png.Bytes(), 130)
	return pdf.Error()
}

// embedPNG places a rendered chart centered on the page at the current Y,
// width mm wide, and advances the flow past it.
func embedPNG(pdf *fpdf.Fpdf, name string, png []byte, width float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pageWidth, _ := pdf.GetPageSize()
	x := (pageWidth - width) / 2
	pdf.ImageOptions(name, x, pdf.GetY(), width, 0, true, opts, 0, "")
}

func placeholder(pdf *fpdf.Fpdf, text string) error {
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 12)
	pdf.MultiCell(0, 8, text, "", "C", false)
	return pdf.Error()
}
