// Package report renders the single-page PDF export of the dashboard.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/charts"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"golang.org/x/text/language"
)

const (
	pageMargin  = 15.0
	contentW    = 180.0
	chartW      = 88.0
	chartH      = 52.0
	chartGap    = 4.0
	heatCellW   = 36.0
	heatCellH   = 8.0
	reportTitle = "Chemical Equipment Report"
)

// accent is the dashboard cyan.
var accent = [3]int{0x00, 0xe5, 0xff}

// Input carries everything one report shows.
type Input struct {
	Dataset     *equipment.Dataset
	Points      []equipment.Point
	GeneratedAt time.Time
	Locale      language.Tag
}

// Write renders the report for in.Dataset as a one-page A4 PDF.
func Write(w io.Writer, in Input) error {
	summary := equipment.Project(in.Dataset)
	if summary == nil {
		return apperrors.E(apperrors.KindNotFound, "no dataset selected")
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}
	if in.Locale == language.Und {
		in.Locale = DefaultLocale
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(reportTitle, true)
	pdf.SetCreator("chemviz", true)
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetModificationDate(in.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	writeHeader(pdf, tr, summary, in)
	writeSummary(pdf, summary)
	writeHeatmap(pdf, summary.Correlation)
	writeCharts(pdf, in)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string, summary *equipment.Summary, in Input) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(10, 10, 32)
	pdf.CellFormat(contentW, 10, reportTitle, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 100, 120)
	pdf.CellFormat(contentW, 6, tr("Dataset: "+summary.Filename), "", 1, "L", false, 0, "")
	if uploaded := LocalTimestamp(summary.UploadedAt, in.Locale); uploaded != "" {
		pdf.CellFormat(contentW, 6, "Uploaded: "+uploaded, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 6, "Generated: "+LocalTimestamp(in.GeneratedAt, in.Locale), "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func writeSummary(pdf *fpdf.Fpdf, summary *equipment.Summary) {
	cards := []struct {
		label string
		value string
	}{
		{label: "Total Equipment", value: fmt.Sprintf("%d", summary.TotalEquipment)},
		{label: "Health Score", value: fmt.Sprintf("%d", summary.HealthScore)},
	}
	for _, avg := range summary.Averages {
		cards = append(cards, struct {
			label string
			value string
		}{label: "Avg " + avg.Name, value: fmt.Sprintf("%.2f", avg.Value)})
	}

	cardW := contentW / float64(len(cards))
	pdf.SetDrawColor(accent[0], accent[1], accent[2])
	pdf.SetTextColor(90, 100, 120)
	pdf.SetFont("Helvetica", "", 8)
	for _, card := range cards {
		pdf.CellFormat(cardW, 6, card.label, "LTR", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(10, 10, 32)
	pdf.SetFont("Helvetica", "B", 13)
	for _, card := range cards {
		pdf.CellFormat(cardW, 9, card.value, "LBR", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.Ln(5)
}

func writeHeatmap(pdf *fpdf.Fpdf, matrix [][]equipment.CorrelationCell) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(10, 10, 32)
	pdf.CellFormat(contentW, 8, "Parameter Correlation", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetDrawColor(255, 255, 255)
	pdf.CellFormat(heatCellW, heatCellH, "", "1", 0, "C", false, 0, "")
	for _, p := range equipment.Parameters {
		pdf.CellFormat(heatCellW, heatCellH, string(p), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for i, row := range matrix {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(10, 10, 32)
		pdf.CellFormat(heatCellW, heatCellH, string(equipment.Parameters[i]), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, cell := range row {
			r, g, b := heatColor(cell.Value)
			pdf.SetFillColor(r, g, b)
			pdf.CellFormat(heatCellW, heatCellH, fmt.Sprintf("%.2f", cell.Value), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(5)
}

// heatColor blends the accent over white at opacity 0.2+0.8*value.
func heatColor(value float64) (int, int, int) {
	alpha := 0.2 + 0.8*value
	blend := func(c int) int {
		return int(255*(1-alpha) + float64(c)*alpha + 0.5)
	}
	return blend(accent[0]), blend(accent[1]), blend(accent[2])
}

func writeCharts(pdf *fpdf.Fpdf, in Input) {
	top := pdf.GetY()
	for i, name := range charts.Names {
		x := pageMargin + float64(i%2)*(chartW+chartGap)
		y := top + float64(i/2)*(chartH+chartGap+6)

		pdf.SetXY(x, y)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(10, 10, 32)
		pdf.CellFormat(chartW, 6, name.Title(), "", 0, "L", false, 0, "")

		png, err := charts.PNG(name, in.Dataset, in.Points)
		if err != nil {
			pdf.SetXY(x, y+6)
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(148, 163, 184)
			pdf.CellFormat(chartW, chartH, "No data", "1", 0, "C", false, 0, "")
			continue
		}
		w, imageX := chartW, x
		if name == charts.Distribution {
			// the pie renders square
			w, imageX = chartH, x+(chartW-chartH)/2
		}
		options := fpdf.ImageOptions{ImageType: "PNG"}
		imageName := "chart-" + string(name)
		pdf.RegisterImageOptionsReader(imageName, options, bytes.NewReader(png))
		pdf.ImageOptions(imageName, imageX, y+6, w, chartH, false, options, 0, "")
	}
}
