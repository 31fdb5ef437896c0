// Package templates renders dashboard HTML as templ components.
//
// Components live in *.templ files; run `templ generate` after editing them.
package templates

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/louisbranch/chemviz/internal/equipment"
)

// AppName is the product name shown in the page chrome.
const AppName = "Chemical Equipment Visualizer"

// PortalView is the upload and credential page state.
type PortalView struct {
	HasToken     bool
	Identity     string
	ExpiresAt    string
	TokenExpired bool
	Status       string
	// ErrorMessage reports the last failed history fetch.
	ErrorMessage string
	// FormError reports a rejected form submission on this page.
	FormError      string
	LatestFilename string
	DatasetCount   int
}

// SummaryCard is one headline figure.
type SummaryCard struct {
	Label string
	Value string
}

// ChartRef points at one rendered chart image.
type ChartRef struct {
	Title string
	URL   string
}

// TimelineRow is one upload in the history timeline.
type TimelineRow struct {
	Filename   string
	UploadedAt string
	Current    bool
}

// DashboardView is the dashboard page state. A non-empty ErrorMessage
// replaces the dataset sections with an error panel.
type DashboardView struct {
	Filename     string
	UploadedAt   string
	Cards        []SummaryCard
	TypeRows     []equipment.TypeCount
	Charts       []ChartRef
	Correlation  [][]equipment.CorrelationCell
	HealthScore  int
	Timeline     []TimelineRow
	ErrorMessage string
	AuthExpired  bool
	ReportURL    string
}

// HeatOpacity is the heatmap cell opacity for a correlation value.
func HeatOpacity(value float64) float64 {
	return 0.2 + 0.8*value
}

func heatStyle(value float64) templ.SafeCSS {
	return templ.SafeCSS(fmt.Sprintf("background-color: rgba(0, 229, 255, %.2f);", HeatOpacity(value)))
}

func heatLabel(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func pageTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " | " + AppName
}

func expiryLabel(view PortalView) string {
	if view.TokenExpired {
		return "expired " + view.ExpiresAt
	}
	return "expires " + view.ExpiresAt
}

func heatmapHeader(matrix [][]equipment.CorrelationCell) []equipment.CorrelationCell {
	if len(matrix) == 0 {
		return nil
	}
	return matrix[0]
}
