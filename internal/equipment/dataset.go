// Package equipment models uploaded telemetry summaries and the derived
// metrics the dashboard renders from them.
//
// Everything here is pure: projections, correlation cells and scatter samples
// are recomputed from a Dataset and never mutate it.
package equipment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Dataset is one uploaded telemetry batch's aggregate summary as returned by
// the remote API. Values are treated as immutable once decoded.
type Dataset struct {
	ID             int64        `json:"id"`
	Filename       string       `json:"filename"`
	UploadedAt     time.Time    `json:"uploaded_at"`
	TotalEquipment int          `json:"total_equipment"`
	AvgFlowrate    float64      `json:"avg_flowrate"`
	AvgPressure    float64      `json:"avg_pressure"`
	AvgTemperature float64      `json:"avg_temperature"`
	Distribution   Distribution `json:"equipment_type_distribution"`
}

// timestampLayouts are tried in order for uploaded_at. Values without a zone
// are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON decodes an API record, accepting uploaded_at with or
// without a zone offset.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	type record Dataset
	aux := struct {
		*record
		UploadedAt *string `json:"uploaded_at"`
	}{record: (*record)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.UploadedAt = time.Time{}
	if aux.UploadedAt == nil || *aux.UploadedAt == "" {
		return nil
	}
	uploadedAt, err := parseTimestamp(*aux.UploadedAt)
	if err != nil {
		return fmt.Errorf("decode uploaded_at: %w", err)
	}
	d.UploadedAt = uploadedAt
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// Parameter names one averaged operating parameter.
type Parameter string

const (
	ParameterFlowrate    Parameter = "Flowrate"
	ParameterPressure    Parameter = "Pressure"
	ParameterTemperature Parameter = "Temperature"
)

// Parameters lists the averaged parameters in display order.
var Parameters = []Parameter{ParameterFlowrate, ParameterPressure, ParameterTemperature}

// Average returns the dataset average for p, or 0 for an unknown parameter.
func (d *Dataset) Average(p Parameter) float64 {
	if d == nil {
		return 0
	}
	switch p {
	case ParameterFlowrate:
		return d.AvgFlowrate
	case ParameterPressure:
		return d.AvgPressure
	case ParameterTemperature:
		return d.AvgTemperature
	default:
		return 0
	}
}

// TypeCount is one entry of the per-type equipment distribution.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// Distribution is the ordered equipment-type histogram. The order is the
// key order of the JSON object the server sent.
type Distribution []TypeCount

// Total sums the counts of every type.
func (d Distribution) Total() int {
	total := 0
	for _, entry := range d {
		total += entry.Count
	}
	return total
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode equipment type distribution: %w", err)
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("equipment type distribution must be an object")
	}

	var out Distribution
	index := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode equipment type: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("equipment type must be a string")
		}
		var raw json.Number
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode count for %q: %w", name, err)
		}
		count, err := parseCount(raw)
		if err != nil {
			return fmt.Errorf("count for %q: %w", name, err)
		}
		if i, seen := index[name]; seen {
			out[i].Count = count
			continue
		}
		index[name] = len(out)
		out = append(out, TypeCount{Type: name, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode equipment type distribution: %w", err)
	}
	*d = out
	return nil
}

// MarshalJSON writes the distribution back as an ordered JSON object.
func (d Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", entry.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func parseCount(raw json.Number) (int, error) {
	if n, err := raw.Int64(); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("must be >= 0, got %d", n)
		}
		return int(n), nil
	}
	f, err := raw.Float64()
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw.String())
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("must be a non-negative integer, got %v", f)
	}
	return int(f), nil
}
