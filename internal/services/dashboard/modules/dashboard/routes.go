package dashboard

import (
	"net/http"

	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Dashboard, h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.DashboardPrefix+"{$}", h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.ChartPattern, h.handleChart)
	mux.HandleFunc(http.MethodGet+" "+routepath.Report, h.handleReport)
	mux.HandleFunc(http.MethodGet+" "+routepath.State, h.handleState)
	mux.Handle(http.MethodGet+" "+routepath.Live, h.liveHandler())
}
