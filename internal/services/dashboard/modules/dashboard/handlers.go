package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/charts"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/httpx"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/pagerender"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/requestmeta"
	"github.com/louisbranch/chemviz/internal/services/dashboard/report"
	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
	"github.com/louisbranch/chemviz/internal/services/dashboard/templates"
	"golang.org/x/net/websocket"
)

// dashboardService defines the service operations used by dashboard handlers.
type dashboardService interface {
	snapshot() session.State
	subscribe() (<-chan session.State, func())
	current() (*equipment.Dataset, []equipment.Point, error)
}

type handlers struct {
	service dashboardService
	now     func() time.Time
}

func newHandlers(s dashboardService, now func() time.Time) handlers {
	if now == nil {
		now = time.Now
	}
	return handlers{service: s, now: now}
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	state := h.service.snapshot()
	switch {
	case state.Status == session.StatusLoading:
		pagerender.WritePage(w, r, pagerender.Page{Title: "Loading", Body: templates.LoadingPage()})
		return
	case state.Status == session.StatusError:
		view := dashboardView(state, report.ResolveLocale(r.Header.Get("Accept-Language")))
		pagerender.WritePage(w, r, pagerender.Page{Title: "Dashboard", Body: templates.DashboardPage(view)})
		return
	case state.Current == nil:
		// Nothing selected: no token, or a history with no uploads yet.
		httpx.WriteRedirect(w, r, routepath.Root)
		return
	}
	view := dashboardView(state, report.ResolveLocale(r.Header.Get("Accept-Language")))
	pagerender.WritePage(w, r, pagerender.Page{Title: state.Current.Filename, Body: templates.DashboardPage(view)})
}

func (h handlers) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := charts.Parse(r.PathValue("name"))
	if !ok {
		httpx.WriteError(w, apperrors.E(apperrors.KindNotFound, "unknown chart"))
		return
	}
	d, points, err := h.service.current()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	png, err := charts.PNG(name, d, points)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteGenerated(w, "image/png", png)
}

func (h handlers) handleReport(w http.ResponseWriter, r *http.Request) {
	d, points, err := h.service.current()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	locale := report.ResolveLocale(r.Header.Get("Accept-Language"))
	generatedAt := h.now()

	var buf bytes.Buffer
	if err := report.Write(&buf, report.Input{Dataset: d, Points: points, GeneratedAt: generatedAt, Locale: locale}); err != nil {
		log.Printf("report render failed dataset_id=%d err=%v", d.ID, err)
		httpx.WriteError(w, err)
		return
	}
	filename := report.Filename(generatedAt, locale)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	httpx.WriteGenerated(w, "application/pdf", buf.Bytes())
}

func (h handlers) handleState(w http.ResponseWriter, _ *http.Request) {
	if err := httpx.WriteJSON(w, http.StatusOK, h.service.snapshot()); err != nil {
		log.Printf("write session state err=%v", err)
	}
}

// liveHandler streams every published session state as one JSON message,
// starting with the state at connect time. Handshakes from another origin
// are refused.
func (h handlers) liveHandler() http.Handler {
	return websocket.Server{Handshake: sameOriginHandshake, Handler: h.streamStates}
}

func sameOriginHandshake(config *websocket.Config, r *http.Request) error {
	if requestmeta.CrossOrigin(r) {
		log.Printf("live stream refused cross-origin handshake origin=%q", r.Header.Get("Origin"))
		return fmt.Errorf("cross-origin websocket handshake from %q", r.Header.Get("Origin"))
	}
	origin, err := websocket.Origin(config, r)
	if err != nil {
		return err
	}
	config.Origin = origin
	return nil
}

func (h handlers) streamStates(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	updates, cancel := h.service.subscribe()
	defer cancel()

	ctx := context.Background()
	if req := conn.Request(); req != nil {
		ctx = req.Context()
	}
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	// The client never sends; a failed read means it went away.
	go func() {
		defer stop()
		var discard string
		for websocket.Message.Receive(conn, &discard) == nil {
		}
	}()

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(h.service.snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := encoder.Encode(state); err != nil {
				return
			}
		}
	}
}
