// Package charts renders the dashboard's dataset charts as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/chemviz/internal/equipment"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Name identifies one chart.
type Name string

const (
	// Distribution is the equipment-type pie chart.
	Distribution Name = "distribution"
	// Averages is the bar chart of flowrate, pressure and temperature.
	Averages Name = "averages"
	// Scatter plots the synthetic flowrate/pressure sample.
	Scatter Name = "scatter"
	// Types is the per-type equipment count bar chart.
	Types Name = "types"
)

// Names lists every chart in dashboard order.
var Names = []Name{Distribution, Averages, Scatter, Types}

const (
	defaultWidth  = 640
	defaultHeight = 360
)

var palette = []drawing.Color{
	drawing.ColorFromHex("00e5ff"),
	drawing.ColorFromHex("7c4dff"),
	drawing.ColorFromHex("ff4081"),
	drawing.ColorFromHex("00c853"),
	drawing.ColorFromHex("ffab00"),
	drawing.ColorFromHex("ff5252"),
}

// Parse resolves a chart name, accepting an optional ".png" suffix.
func Parse(raw string) (Name, bool) {
	raw = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".png")
	for _, name := range Names {
		if string(name) == raw {
			return name, true
		}
	}
	return "", false
}

// Title is the heading shown above a chart.
func (n Name) Title() string {
	switch n {
	case Distribution:
		return "Equipment Distribution"
	case Averages:
		return "Average Parameters"
	case Scatter:
		return "Flowrate vs Pressure"
	case Types:
		return "Equipment Count by Type"
	default:
		return string(n)
	}
}

// Render writes chart name for d as PNG. points feeds the scatter chart.
// A chart with nothing to draw is a not_found error.
func Render(w io.Writer, name Name, d *equipment.Dataset, points []equipment.Point) error {
	if d == nil {
		return apperrors.E(apperrors.KindNotFound, "no dataset selected")
	}
	switch name {
	case Distribution:
		return renderPie(w, d)
	case Averages:
		return renderBars(w, name, equipment.AveragesSeries(d))
	case Types:
		return renderBars(w, name, equipment.PieSeries(d))
	case Scatter:
		return renderScatter(w, points)
	default:
		return apperrors.E(apperrors.KindNotFound, fmt.Sprintf("unknown chart %q", name))
	}
}

// PNG renders a chart into memory.
func PNG(name Name, d *equipment.Dataset, points []equipment.Point) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, name, d, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPie(w io.Writer, d *equipment.Dataset) error {
	values := make([]chart.Value, 0, len(d.Distribution))
	for i, entry := range d.Distribution {
		if entry.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", entry.Type, entry.Count),
			Value: float64(entry.Count),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(values) == 0 {
		return apperrors.E(apperrors.KindNotFound, "distribution is empty")
	}
	pie := chart.PieChart{
		Title:  Distribution.Title(),
		Width:  defaultHeight,
		Height: defaultHeight,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", Distribution, err)
	}
	return nil
}

func renderBars(w io.Writer, name Name, series []equipment.Slice) error {
	if len(series) == 0 {
		return apperrors.E(apperrors.KindNotFound, fmt.Sprintf("%s chart has no values", name))
	}
	bars := make([]chart.Value, 0, len(series))
	allZero := true
	for i, s := range series {
		if s.Value != 0 {
			allZero = false
		}
		bars = append(bars, chart.Value{
			Label: s.Name,
			Value: s.Value,
			Style: chart.Style{FillColor: palette[i%len(palette)], StrokeColor: palette[i%len(palette)]},
		})
	}
	if allZero {
		return apperrors.E(apperrors.KindNotFound, fmt.Sprintf("%s chart has no values", name))
	}
	bar := chart.BarChart{
		Title:      name.Title(),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarWidth:   48,
		Bars:       bars,
	}
	if err := bar.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", name, err)
	}
	return nil
}

func renderScatter(w io.Writer, points []equipment.Point) error {
	if len(points) < 2 {
		return apperrors.E(apperrors.KindNotFound, "scatter sample needs at least two points")
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	graph := chart.Chart{
		Title:      Scatter.Title(),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      defaultWidth,
		Height:     defaultHeight,
		XAxis:      chart.XAxis{Name: string(equipment.ParameterFlowrate)},
		YAxis:      chart.YAxis{Name: string(equipment.ParameterPressure)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Sample",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColor:    palette[0],
				},
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", Scatter, err)
	}
	return nil
}
