package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"fiberwatch.sh/internal/models"
)

// Backend is a fake fault-detection API served over httptest.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	stats    any
	recent   any
	predict  http.HandlerFunc
	statusOf map[string]int
	hits     map[string]int
	requests []models.PredictRequest
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		stats:    `{"device_count":0,"measurement_count":0,"fault_distribution":{}}`,
		recent:   []models.Measurement{},
		statusOf: make(map[string]int),
		hits:     make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/data/stats", b.serve("stats", func() any { return b.stats }))
	mux.HandleFunc("/api/data/recent", b.serve("recent", func() any { return b.recent }))
	mux.HandleFunc("/api/health", b.serve("health", func() any { return models.Health{Status: "ok"} }))
	mux.HandleFunc("/predict", b.handlePredict)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.Server.URL
}

// SetStats sets the body of GET /api/data/stats.
func (b *Backend) SetStats(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = v
}

// SetRecent sets the body of GET /api/data/recent.
func (b *Backend) SetRecent(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recent = v
}

// SetStatus makes endpoint ("stats", "recent", "health") answer with code.
func (b *Backend) SetStatus(endpoint string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusOf[endpoint] = code
}

// HandlePredict installs the POST /predict handler.
func (b *Backend) HandlePredict(h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.predict = h
}

// Hits returns how many times endpoint was requested.
func (b *Backend) Hits(endpoint string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[endpoint]
}

// PredictRequests returns every decoded POST /predict body.
func (b *Backend) PredictRequests() []models.PredictRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.PredictRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) serve(endpoint string, body func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[endpoint]++
		code := b.statusOf[endpoint]
		v := body()
		b.mu.Unlock()

		if code != 0 && code != http.StatusOK {
			http.Error(w, http.StatusText(code), code)
			return
		}
		writeJSON(w, v)
	}
}

func (b *Backend) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.hits["predict"]++
	b.requests = append(b.requests, req)
	h := b.predict
	b.mu.Unlock()

	if h == nil {
		http.Error(w, `{"error":"no model"}`, http.StatusInternalServerError)
		return
	}
	h(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if raw, ok := v.(string); ok {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// JSON returns a handler answering 200 with body.
func JSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, body)
	}
}
