// Package pagerender centralizes dashboard page rendering behavior.
package pagerender

import (
	"bytes"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/httpx"
	"github.com/louisbranch/chemviz/internal/services/dashboard/templates"
)

// Page describes one full-page HTML response.
type Page struct {
	Title      string
	StatusCode int
	Body       templ.Component
}

// WritePage renders page inside the shared layout. Rendering happens into a
// buffer first so a template failure still yields a clean 500.
func WritePage(w http.ResponseWriter, r *http.Request, page Page) {
	if w == nil {
		return
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = templ.NopComponent
	}

	ctx := templ.WithChildren(httpx.RequestContext(r), body)
	var rendered bytes.Buffer
	if err := templates.Layout(page.Title).Render(ctx, &rendered); err != nil {
		log.Printf("render page title=%q err=%v", page.Title, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(rendered.Bytes())
}
