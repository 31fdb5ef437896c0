package portal

import (
	"time"

	"github.com/louisbranch/chemviz/internal/services/dashboard/report"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
	"github.com/louisbranch/chemviz/internal/services/dashboard/templates"
	"github.com/louisbranch/chemviz/internal/services/dashboard/tokeninfo"
	"golang.org/x/text/language"
)

func portalView(state session.State, now time.Time, locale language.Tag) templates.PortalView {
	view := templates.PortalView{
		HasToken:     state.HasToken(),
		Status:       string(state.Status),
		ErrorMessage: state.Message(),
		DatasetCount: len(state.History),
	}
	if state.Current != nil {
		view.LatestFilename = state.Current.Filename
	}
	if !view.HasToken {
		return view
	}
	info, err := tokeninfo.Inspect(state.Token)
	if err != nil {
		view.Identity = "opaque token"
		return view
	}
	view.Identity = info.Identity()
	if !info.ExpiresAt.IsZero() {
		view.ExpiresAt = report.LocalTimestamp(info.ExpiresAt.In(now.Location()), locale)
		view.TokenExpired = info.Expired(now)
	}
	return view
}
