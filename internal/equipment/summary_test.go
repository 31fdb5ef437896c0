package equipment

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"
)

func scenarioDataset() *Dataset {
	return &Dataset{
		ID:             1,
		Filename:       "sample.csv",
		UploadedAt:     time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		TotalEquipment: 10,
		AvgFlowrate:    50,
		AvgPressure:    30,
		AvgTemperature: 20,
		Distribution:   Distribution{{Type: "Pump", Count: 6}, {Type: "Valve", Count: 4}},
	}
}

func TestProjectScenario(t *testing.T) {
	t.Parallel()

	summary := Project(scenarioDataset())
	if summary == nil {
		t.Fatal("Project() = nil, want summary")
	}
	wantPie := []Slice{{Name: "Pump", Value: 6}, {Name: "Valve", Value: 4}}
	if !reflect.DeepEqual(summary.Distribution, wantPie) {
		t.Fatalf("Distribution = %v, want %v", summary.Distribution, wantPie)
	}
	wantAverages := []Slice{{Name: "Flowrate", Value: 50}, {Name: "Pressure", Value: 30}, {Name: "Temperature", Value: 20}}
	if !reflect.DeepEqual(summary.Averages, wantAverages) {
		t.Fatalf("Averages = %v, want %v", summary.Averages, wantAverages)
	}
	if summary.HealthScore != 90 {
		t.Fatalf("HealthScore = %d, want 90", summary.HealthScore)
	}
	if summary.TotalEquipment != 10 {
		t.Fatalf("TotalEquipment = %d, want 10", summary.TotalEquipment)
	}
}

func TestProjectionsOfAbsentDataset(t *testing.T) {
	t.Parallel()

	if got := Project(nil); got != nil {
		t.Fatalf("Project(nil) = %v, want nil", got)
	}
	if got := PieSeries(nil); got != nil {
		t.Fatalf("PieSeries(nil) = %v, want nil", got)
	}
	if got := AveragesSeries(nil); got != nil {
		t.Fatalf("AveragesSeries(nil) = %v, want nil", got)
	}
	if _, ok := HealthScore(nil); ok {
		t.Fatal("HealthScore(nil) ok = true, want false")
	}
}

func TestHealthScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		f, p, t float64
		want    int
	}{
		{name: "scenario", f: 50, p: 30, t: 20, want: 90},
		{name: "floors at zero", f: 900, p: 500, t: 300, want: 0},
		{name: "exceeds hundred with negatives", f: -100, p: -50, t: -50, want: 120},
		{name: "zero averages", want: 100},
		{name: "rounds half up", f: 5, want: 100},
		{name: "rounds down below half", f: 4, want: 100},
		{name: "rounds 98.5 up to 99", f: 15, want: 99},
		{name: "saturates at max int32", f: -1e12, want: math.MaxInt32},
		{name: "nan floors at zero", f: math.NaN(), want: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := HealthScore(&Dataset{AvgFlowrate: tc.f, AvgPressure: tc.p, AvgTemperature: tc.t})
			if !ok {
				t.Fatal("HealthScore() ok = false")
			}
			if got != tc.want {
				t.Fatalf("HealthScore() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestHealthScoreIsNonIncreasing(t *testing.T) {
	t.Parallel()

	previous := int(^uint(0) >> 1)
	for sum := -2000.0; sum <= 2000; sum += 7.5 {
		got, _ := HealthScore(&Dataset{AvgFlowrate: sum})
		if got > previous {
			t.Fatalf("HealthScore(sum=%v) = %d, previous %d", sum, got, previous)
		}
		if got < 0 {
			t.Fatalf("HealthScore(sum=%v) = %d, want >= 0", sum, got)
		}
		previous = got
	}
}

func TestDistributionKeepsServerOrder(t *testing.T) {
	t.Parallel()

	payload := `{"id":7,"filename":"plant.csv","uploaded_at":"2026-10-19T08:00:00.123456Z","total_equipment":15,
		"avg_flowrate":120.5,"avg_pressure":6.2,"avg_temperature":110,
		"equipment_type_distribution":{"Valve":4,"Pump":6,"Reactor":3,"Compressor":2}}`
	var d Dataset
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Distribution{{"Valve", 4}, {"Pump", 6}, {"Reactor", 3}, {"Compressor", 2}}
	if !reflect.DeepEqual(d.Distribution, want) {
		t.Fatalf("Distribution = %v, want %v", d.Distribution, want)
	}
	if d.Distribution.Total() != 15 {
		t.Fatalf("Total() = %d, want 15", d.Distribution.Total())
	}

	encoded, err := json.Marshal(d.Distribution)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(encoded); got != `{"Valve":4,"Pump":6,"Reactor":3,"Compressor":2}` {
		t.Fatalf("marshal = %s", got)
	}
}

func TestDistributionRejectsInvalidCounts(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`{"Pump":-1}`, `{"Pump":1.5}`, `{"Pump":"six"}`, `["Pump"]`} {
		var d Distribution
		if err := json.Unmarshal([]byte(payload), &d); err == nil {
			t.Fatalf("Unmarshal(%s) error = nil, want error", payload)
		}
	}
}

func TestDistributionAcceptsNullAndFloats(t *testing.T) {
	t.Parallel()

	var d Distribution
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if d != nil {
		t.Fatalf("Distribution = %v, want nil", d)
	}
	if err := json.Unmarshal([]byte(`{"Pump":6.0}`), &d); err != nil {
		t.Fatalf("Unmarshal(float) error = %v", err)
	}
	if len(d) != 1 || d[0].Count != 6 {
		t.Fatalf("Distribution = %v, want Pump=6", d)
	}
}

func TestTimelineSkipsNilEntries(t *testing.T) {
	t.Parallel()

	newest := scenarioDataset()
	older := &Dataset{ID: 2, Filename: "older.csv"}
	entries := Timeline([]*Dataset{newest, nil, older})
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Filename != "sample.csv" || entries[1].Filename != "older.csv" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestTypeRowsCopiesDistribution(t *testing.T) {
	t.Parallel()

	d := scenarioDataset()
	rows := TypeRows(d)
	if !reflect.DeepEqual(rows, []TypeCount(d.Distribution)) {
		t.Fatalf("TypeRows() = %v, want %v", rows, d.Distribution)
	}
	rows[0].Count = 99
	if d.Distribution[0].Count != 6 {
		t.Fatal("TypeRows() shares storage with the dataset")
	}
	if TypeRows(nil) != nil {
		t.Fatal("TypeRows(nil) != nil")
	}
}
