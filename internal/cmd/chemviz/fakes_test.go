package chemviz

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeAPI is an in-memory telemetry API.
type fakeAPI struct {
	mu       sync.Mutex
	tokens   map[string]bool
	datasets []string
	uploads  []string
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	api := &fakeAPI{tokens: map[string]bool{"tok-1": true, "tok-2": true}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/", api.token)
	mux.HandleFunc("POST /api/token/refresh/", api.refresh)
	mux.HandleFunc("GET /api/history/", api.history)
	mux.HandleFunc("POST /api/upload/", api.upload)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (f *fakeAPI) token(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if creds.Username != "operator" || creds.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
		return
	}
	_, _ = io.WriteString(w, `{"access":"tok-1","refresh":"ref-1"}`)
}

func (f *fakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Refresh != "ref-1" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	_, _ = io.WriteString(w, `{"access":"tok-2"}`)
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
}

func (f *fakeAPI) history(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// Newest first.
	records := make([]string, 0, len(f.datasets))
	for i := len(f.datasets) - 1; i >= 0; i-- {
		records = append(records, f.datasets[i])
	}
	_, _ = io.WriteString(w, "["+strings.Join(records, ",")+"]")
}

func (f *fakeAPI) upload(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, _ := io.ReadAll(file)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, string(content))
	id := len(f.datasets) + 1
	record := fmt.Sprintf(`{"id":%d,"filename":%q,"uploaded_at":"2026-10-19T09:%02d:00Z","total_equipment":3,`+
		`"avg_flowrate":120,"avg_pressure":5.5,"avg_temperature":110,`+
		`"equipment_type_distribution":{"Pump":2,"Valve":1}}`, id, header.Filename, id)
	f.datasets = append(f.datasets, record)
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, record)
}
