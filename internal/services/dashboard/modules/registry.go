// Package modules lists the dashboard's default module set.
package modules

import (
	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	"github.com/louisbranch/chemviz/internal/services/dashboard/modules/dashboard"
	"github.com/louisbranch/chemviz/internal/services/dashboard/modules/portal"
)

// Default returns every dashboard module wired to deps.
func Default(deps module.Dependencies) []module.Module {
	return []module.Module{
		portal.New(
			portal.WithSession(deps.Session),
			portal.WithAPI(deps.API),
			portal.WithClock(deps.Now),
		),
		dashboard.New(
			dashboard.WithSession(deps.Session),
			dashboard.WithSampler(deps.Sampler),
			dashboard.WithClock(deps.Now),
		),
	}
}

// Healthy reports whether every module that can report health is healthy.
func Healthy(mods []module.Module) bool {
	for _, m := range mods {
		if reporter, ok := m.(module.HealthReporter); ok && !reporter.Healthy() {
			return false
		}
	}
	return true
}
