// Package routepath stores canonical HTTP paths for dashboard modules.
package routepath

import "net/url"

const (
	Root            = "/"
	Token           = "/token"
	Login           = "/login"
	Logout          = "/logout"
	Upload          = "/upload"
	Retry           = "/retry"
	Health          = "/healthz"
	Dashboard       = "/dashboard"
	DashboardPrefix = "/dashboard/"
	ChartPattern    = DashboardPrefix + "charts/{name}"
	Report          = DashboardPrefix + "report.pdf"
	State           = DashboardPrefix + "state"
	Live            = DashboardPrefix + "live"
)

// Chart returns the image path of one named chart.
func Chart(name string) string {
	return DashboardPrefix + "charts/" + url.PathEscape(name) + ".png"
}
