package dashboard

import (
	"context"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
)

type service struct {
	session module.Session
	sampler *equipment.Sampler
}

func newService(s module.Session, sampler *equipment.Sampler) service {
	if s == nil {
		s = unavailableSession{}
	}
	if sampler == nil {
		sampler = equipment.NewSampler(nil)
	}
	return service{session: s, sampler: sampler}
}

func (s service) snapshot() session.State {
	return s.session.Snapshot()
}

func (s service) subscribe() (<-chan session.State, func()) {
	return s.session.Subscribe()
}

// current returns the on-screen dataset with its memoized scatter sample.
func (s service) current() (*equipment.Dataset, []equipment.Point, error) {
	d := s.session.Snapshot().Current
	if d == nil {
		return nil, nil, apperrors.E(apperrors.KindNotFound, "no dataset selected")
	}
	return d, s.sampler.Sample(d), nil
}

type unavailableSession struct{}

func (unavailableSession) Snapshot() session.State {
	return session.State{Status: session.StatusUnauthenticated}
}

func (unavailableSession) Subscribe() (<-chan session.State, func()) {
	ch := make(chan session.State)
	close(ch)
	return ch, func() {}
}

func (unavailableSession) SetToken(context.Context, string) error {
	return apperrors.E(apperrors.KindUnavailable, "session service is not configured")
}

func (unavailableSession) Retry(context.Context) error {
	return apperrors.E(apperrors.KindUnavailable, "session service is not configured")
}

func (unavailableSession) UploadCompleted(context.Context) error {
	return apperrors.E(apperrors.KindUnavailable, "session service is not configured")
}

func (unavailableSession) Logout(context.Context) error {
	return apperrors.E(apperrors.KindUnavailable, "session service is not configured")
}
