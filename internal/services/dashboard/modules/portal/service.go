package portal

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"

	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
)

type service struct {
	session module.Session
	api     module.API
}

func newService(s module.Session, api module.API) service {
	if s == nil {
		s = unavailableSession{}
	}
	if api == nil {
		api = unavailableAPI{}
	}
	return service{session: s, api: api}
}

func (s service) snapshot() session.State {
	return s.session.Snapshot()
}

func (s service) setToken(ctx context.Context, token string) error {
	return s.session.SetToken(ctx, token)
}

// login exchanges credentials for a token pair and adopts the access token.
func (s service) login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperrors.E(apperrors.KindInvalidInput, "username and password are required")
	}
	pair, err := s.api.ObtainToken(ctx, username, password)
	if err != nil {
		return err
	}
	return s.session.SetToken(ctx, pair.Access)
}

func (s service) logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

func (s service) retry(ctx context.Context) error {
	return s.session.Retry(ctx)
}

// upload validates and sends one CSV, then reloads history so the new
// dataset becomes current.
func (s service) upload(ctx context.Context, filename string, content io.Reader) error {
	if content == nil {
		return apperrors.E(apperrors.KindInvalidInput, "Please select a CSV file to upload.")
	}
	data, err := io.ReadAll(io.LimitReader(content, remote.MaxUploadBytes+1))
	if err != nil {
		return apperrors.Wrap(apperrors.KindInvalidInput, "Could not read the uploaded file.", err)
	}
	if err := remote.ValidateUpload(filename, data); err != nil {
		return err
	}
	filename = remote.UploadName(filename)

	token := s.session.Snapshot().Token
	if token == "" {
		return apperrors.E(apperrors.KindInvalidInput, "Set an access token before uploading.")
	}
	receipt, err := s.api.Upload(ctx, token, filename, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if receipt.Dataset != nil {
		log.Printf("upload accepted filename=%s dataset_id=%d", filename, receipt.Dataset.ID)
	} else {
		log.Printf("upload accepted filename=%s", filename)
	}
	return s.session.UploadCompleted(ctx)
}

type unavailableSession struct{}

func (unavailableSession) Snapshot() session.State {
	return session.State{Status: session.StatusUnauthenticated}
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

func (unavailableSession) Subscribe() (<-chan session.State, func()) {
	ch := make(chan session.State)
	close(ch)
	return ch, func() {}
}

type unavailableAPI struct{}

func (unavailableAPI) Upload(context.Context, string, string, io.Reader) (remote.UploadReceipt, error) {
	return remote.UploadReceipt{}, apperrors.E(apperrors.KindUnavailable, "telemetry api is not configured")
}

func (unavailableAPI) ObtainToken(context.Context, string, string) (remote.TokenPair, error) {
	return remote.TokenPair{}, apperrors.E(apperrors.KindUnavailable, "telemetry api is not configured")
}
