package report

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"golang.org/x/text/language"
)

var reportDay = time.Date(2026, 10, 9, 14, 5, 0, 0, time.UTC)

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  language.Tag
		want string
	}{
		{tag: language.AmericanEnglish, want: "Chemical_Equipment_Report_10-9-2026.pdf"},
		{tag: language.English, want: "Chemical_Equipment_Report_10-9-2026.pdf"},
		{tag: language.BritishEnglish, want: "Chemical_Equipment_Report_9-10-2026.pdf"},
		{tag: language.German, want: "Chemical_Equipment_Report_9.10.2026.pdf"},
		{tag: language.Japanese, want: "Chemical_Equipment_Report_2026-10-9.pdf"},
		{tag: language.French, want: "Chemical_Equipment_Report_9-10-2026.pdf"},
	}
	for _, tc := range tests {
		if got := Filename(reportDay, tc.tag); got != tc.want {
			t.Fatalf("Filename(%s) = %q, want %q", tc.tag, got, tc.want)
		}
	}
}

func TestResolveLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   language.Tag
	}{
		{header: "", want: language.AmericanEnglish},
		{header: "de-DE,de;q=0.9,en;q=0.5", want: language.German},
		{header: "en-GB", want: language.BritishEnglish},
		{header: "ja", want: language.Japanese},
		{header: ";;;", want: language.AmericanEnglish},
	}
	for _, tc := range tests {
		if got := ResolveLocale(tc.header); got != tc.want {
			t.Fatalf("ResolveLocale(%q) = %s, want %s", tc.header, got, tc.want)
		}
	}
}

func TestLocalTimestamp(t *testing.T) {
	t.Parallel()

	if got := LocalTimestamp(reportDay, language.German); got != "9.10.2026 14:05" {
		t.Fatalf("LocalTimestamp() = %q", got)
	}
	if got := LocalTimestamp(time.Time{}, language.German); got != "" {
		t.Fatalf("LocalTimestamp(zero) = %q, want empty", got)
	}
}

func TestWriteSinglePagePDF(t *testing.T) {
	t.Parallel()

	d := &equipment.Dataset{
		Filename:       "sample.csv",
		UploadedAt:     reportDay,
		TotalEquipment: 10,
		AvgFlowrate:    50,
		AvgPressure:    30,
		AvgTemperature: 20,
		Distribution:   equipment.Distribution{{Type: "Pump", Count: 6}, {Type: "Valve", Count: 4}},
	}
	var out bytes.Buffer
	err := Write(&out, Input{
		Dataset:     d,
		Points:      equipment.Synthesize(d, rand.New(rand.NewPCG(5, 6))),
		GeneratedAt: reportDay,
		Locale:      language.AmericanEnglish,
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("%PDF-")) {
		t.Fatal("Write() output is not a PDF")
	}
	if pages := bytes.Count(out.Bytes(), []byte("/Type /Page\n")); pages != 1 {
		t.Fatalf("pages = %d, want 1", pages)
	}
}

func TestWriteWithoutChartsData(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := Write(&out, Input{Dataset: &equipment.Dataset{Filename: "empty.csv"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("%PDF-")) {
		t.Fatal("Write() output is not a PDF")
	}
}

func TestWriteRequiresDataset(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := Write(&out, Input{})
	if got := apperrors.KindOf(err); got != apperrors.KindNotFound {
		t.Fatalf("KindOf(Write()) = %q, want %q", got, apperrors.KindNotFound)
	}
	if out.Len() != 0 {
		t.Fatalf("Write() wrote %d bytes on error", out.Len())
	}
}

func TestHeatColorBounds(t *testing.T) {
	t.Parallel()

	r, g, b := heatColor(1)
	if r != accent[0] || g != accent[1] || b != accent[2] {
		t.Fatalf("heatColor(1) = %d,%d,%d, want accent", r, g, b)
	}
	r, _, _ = heatColor(0)
	if r != 204 {
		t.Fatalf("heatColor(0) red = %d, want 204", r)
	}
}
