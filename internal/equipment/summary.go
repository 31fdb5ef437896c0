package equipment

import (
	"math"
	"time"
)

// Slice is one named value of a chart series.
type Slice struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Summary bundles every display-ready value derived from one dataset.
type Summary struct {
	Dataset        *Dataset            `json:"-" yaml:"-"`
	Filename       string              `json:"filename" yaml:"filename"`
	UploadedAt     time.Time           `json:"uploaded_at" yaml:"uploaded_at"`
	TotalEquipment int                 `json:"total_equipment" yaml:"total_equipment"`
	Averages       []Slice             `json:"averages" yaml:"averages"`
	Distribution   []Slice             `json:"distribution" yaml:"distribution"`
	HealthScore    int                 `json:"health_score" yaml:"health_score"`
	Correlation    [][]CorrelationCell `json:"correlation" yaml:"correlation"`
}

// Project derives the full summary for d. A nil dataset projects to nil:
// there is nothing to render.
func Project(d *Dataset) *Summary {
	if d == nil {
		return nil
	}
	health, _ := HealthScore(d)
	return &Summary{
		Dataset:        d,
		Filename:       d.Filename,
		UploadedAt:     d.UploadedAt,
		TotalEquipment: d.TotalEquipment,
		Averages:       AveragesSeries(d),
		Distribution:   PieSeries(d),
		HealthScore:    health,
		Correlation:    CorrelationMatrix(d),
	}
}

// PieSeries lists one slice per equipment type in distribution order.
func PieSeries(d *Dataset) []Slice {
	if d == nil {
		return nil
	}
	series := make([]Slice, 0, len(d.Distribution))
	for _, entry := range d.Distribution {
		series = append(series, Slice{Name: entry.Type, Value: float64(entry.Count)})
	}
	return series
}

// AveragesSeries lists the flowrate, pressure and temperature averages.
func AveragesSeries(d *Dataset) []Slice {
	if d == nil {
		return nil
	}
	series := make([]Slice, 0, len(Parameters))
	for _, p := range Parameters {
		series = append(series, Slice{Name: string(p), Value: d.Average(p)})
	}
	return series
}

// HealthScore is 100 minus a tenth of the summed averages, rounded half up
// and floored at 0. Scores above 100 are kept; only values past MaxInt32
// saturate there. ok is false for a nil dataset.
func HealthScore(d *Dataset) (score int, ok bool) {
	if d == nil {
		return 0, false
	}
	sum := d.AvgFlowrate + d.AvgPressure + d.AvgTemperature
	v := math.Floor(100 - sum/10 + 0.5)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0, true
	case v >= math.MaxInt32:
		return math.MaxInt32, true
	}
	return int(v), true
}

// TimelineEntry is one upload in the history timeline.
type TimelineEntry struct {
	ID         int64     `json:"id" yaml:"id"`
	Filename   string    `json:"filename" yaml:"filename"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// Timeline lists the history entries in the given (newest first) order.
func Timeline(history []*Dataset) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(history))
	for _, d := range history {
		if d == nil {
			continue
		}
		entries = append(entries, TimelineEntry{ID: d.ID, Filename: d.Filename, UploadedAt: d.UploadedAt})
	}
	return entries
}

// TypeRows lists one equipment table row per type in distribution order.
func TypeRows(d *Dataset) []TypeCount {
	if d == nil {
		return nil
	}
	return append([]TypeCount(nil), d.Distribution...)
}
