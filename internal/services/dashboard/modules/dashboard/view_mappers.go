package dashboard

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/charts"
	"github.com/louisbranch/chemviz/internal/services/dashboard/report"
	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
	"github.com/louisbranch/chemviz/internal/services/dashboard/templates"
	"golang.org/x/text/language"
)

func dashboardView(state session.State, locale language.Tag) templates.DashboardView {
	view := templates.DashboardView{
		Timeline: timelineRows(state, locale),
	}
	if state.Status == session.StatusError {
		view.ErrorMessage = state.Message()
		view.AuthExpired = state.ErrorKind == session.ErrorAuthExpired
		return view
	}
	summary := equipment.Project(state.Current)
	if summary == nil {
		return view
	}
	view.Filename = summary.Filename
	view.UploadedAt = report.LocalTimestamp(summary.UploadedAt, locale)
	view.Cards = summaryCards(summary)
	view.TypeRows = equipment.TypeRows(summary.Dataset)
	view.Correlation = summary.Correlation
	view.HealthScore = summary.HealthScore
	view.ReportURL = routepath.Report
	for _, name := range charts.Names {
		view.Charts = append(view.Charts, templates.ChartRef{Title: name.Title(), URL: routepath.Chart(string(name))})
	}
	return view
}

func summaryCards(summary *equipment.Summary) []templates.SummaryCard {
	cards := []templates.SummaryCard{{Label: "Total Equipment", Value: strconv.Itoa(summary.TotalEquipment)}}
	for _, avg := range summary.Averages {
		cards = append(cards, templates.SummaryCard{Label: "Avg " + avg.Name, Value: fmt.Sprintf("%.2f", avg.Value)})
	}
	return cards
}

// timelineRows lists history newest first and marks the on-screen dataset.
func timelineRows(state session.State, locale language.Tag) []templates.TimelineRow {
	entries := equipment.Timeline(state.History)
	rows := make([]templates.TimelineRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, templates.TimelineRow{
			Filename:   entry.Filename,
			UploadedAt: report.LocalTimestamp(entry.UploadedAt, locale),
			Current:    state.Current != nil && entry.ID == state.Current.ID,
		})
	}
	return rows
}
