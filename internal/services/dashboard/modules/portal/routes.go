package portal

import (
	"net/http"

	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodPost+" "+routepath.Token, h.handleSetToken)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLogin)
	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodPost+" "+routepath.Upload, h.handleUpload)
	mux.HandleFunc(http.MethodPost+" "+routepath.Retry, h.handleRetry)
}
