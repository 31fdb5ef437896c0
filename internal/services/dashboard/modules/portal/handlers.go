package portal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/httpx"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/pagerender"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/report"
	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
	"github.com/louisbranch/chemviz/internal/services/dashboard/templates"
)

// portalService defines the service operations used by portal handlers.
type portalService interface {
	snapshot() session.State
	setToken(ctx context.Context, token string) error
	login(ctx context.Context, username, password string) error
	logout(ctx context.Context) error
	retry(ctx context.Context) error
	upload(ctx context.Context, filename string, content io.Reader) error
}

type handlers struct {
	service portalService
	now     func() time.Time
}

func newHandlers(s portalService, now func() time.Time) handlers {
	if now == nil {
		now = time.Now
	}
	return handlers{service: s, now: now}
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPortal(w, r, http.StatusOK, "")
}

func (h handlers) handleSetToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormError(w, r, apperrors.Wrap(apperrors.KindInvalidInput, "Could not read the token form.", err))
		return
	}
	if err := h.service.setToken(httpx.RequestContext(r), r.PostForm.Get("token")); err != nil {
		h.renderFormError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Dashboard)
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormError(w, r, apperrors.Wrap(apperrors.KindInvalidInput, "Could not read the login form.", err))
		return
	}
	err := h.service.login(httpx.RequestContext(r), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if apperrors.KindOf(err) == apperrors.KindAuthExpired {
		err = apperrors.Wrap(apperrors.KindAuthExpired, "Invalid username or password.", err)
	}
	if err != nil {
		h.renderFormError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Dashboard)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.logout(httpx.RequestContext(r)); err != nil {
		h.renderFormError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Root)
}

func (h handlers) handleRetry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.retry(httpx.RequestContext(r)); err != nil {
		h.renderFormError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Dashboard)
}

func (h handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, remote.MaxUploadBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			err = apperrors.Wrap(apperrors.KindInvalidInput, "Please select a CSV file to upload.", err)
		} else {
			err = apperrors.Wrap(apperrors.KindInvalidInput, "Could not read the upload form.", err)
		}
		h.renderFormError(w, r, err)
		return
	}
	defer file.Close()

	if err := h.service.upload(httpx.RequestContext(r), header.Filename, file); err != nil {
		h.renderFormError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Dashboard)
}

func (h handlers) renderFormError(w http.ResponseWriter, r *http.Request, err error) {
	h.renderPortal(w, r, apperrors.HTTPStatus(err), formMessage(err))
}

func (h handlers) renderPortal(w http.ResponseWriter, r *http.Request, status int, formError string) {
	view := portalView(h.service.snapshot(), h.now(), report.ResolveLocale(r.Header.Get("Accept-Language")))
	view.FormError = formError
	pagerender.WritePage(w, r, pagerender.Page{
		Title:      "Upload",
		StatusCode: status,
		Body:       templates.PortalPage(view),
	})
}

// formMessage is the operator-facing copy for a rejected form action.
// Transport detail never reaches the page; the API's own message does.
func formMessage(err error) string {
	var appErr apperrors.Error
	hasMessage := errors.As(err, &appErr) && appErr.Message != ""
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput:
		if hasMessage {
			return appErr.Message
		}
		return "The request was invalid."
	case apperrors.KindAuthExpired:
		if hasMessage {
			return appErr.Message
		}
		return "Session expired or invalid. Please set a new token."
	case apperrors.KindConnection:
		if hasMessage {
			return "Backend Connection Error: " + appErr.Message
		}
		return "Backend Connection Error"
	case apperrors.KindUnavailable:
		return "The dashboard is not connected to the telemetry API."
	default:
		return "Something went wrong. Please try again."
	}
}
