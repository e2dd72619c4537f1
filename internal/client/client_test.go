package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/ferrors"
	"fiberwatch.sh/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(&Config{BaseURL: server.URL})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(&Config{BaseURL: "http://backend:5000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://backend:5000", c.BaseURL())

	_, err = NewClient(&Config{BaseURL: "ftp://backend"})
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/data/stats", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"device_count":3,"measurement_count":10,"fault_distribution":{"No Fault":8,"Fiber Break":2},"notification_count":4}`))
	})

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.DeviceCount)
	assert.Equal(t, 10, stats.MeasurementCount)
	assert.Equal(t, 2, stats.FaultDistribution[faults.FiberBreak])
	require.NotNil(t, stats.NotificationCount)
	assert.Equal(t, 4, *stats.NotificationCount)
	assert.Nil(t, stats.RecentAlerts)
}

func TestStatsMissingDistribution(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"device_count":3,"measurement_count":10}`))
	})

	_, err := c.Stats(context.Background())
	require.Error(t, err)
	assert.Equal(t, ferrors.KindDecode, ferrors.KindOf(err))
}

func TestRecent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/data/recent", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"timestamp":"2024-05-01 10:15:30","device_name":null,"signal_power":-12.5,"attenuation":0.35,"distance":1200,"fault_type":"No Fault","confidence":97.2}]`))
	})

	ms, err := c.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "", ms[0].Device())
	assert.Equal(t, -12.5, ms[0].SignalPower)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 30, 0, time.UTC), ms[0].Timestamp.Time)
}

func TestRecentEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`null`))
	})

	ms, err := c.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)
}

func TestPredict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.PredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.PredictRequest{SignalPower: -35, Attenuation: 1.8, Distance: 4000}, req)

		_, _ = w.Write([]byte(`{"prediction":"Fiber Break","probabilities":{"No Fault":0.02,"Fiber Break":0.91,"High Loss":0.05,"Splice Loss":0.02},"confidence":91.0}`))
	})

	res, err := c.Predict(context.Background(), models.PredictRequest{SignalPower: -35, Attenuation: 1.8, Distance: 4000})
	require.NoError(t, err)
	assert.Equal(t, faults.FiberBreak, res.Prediction)
	assert.InDelta(t, 0.91, res.Probabilities[faults.FiberBreak], 1e-9)
	assert.Equal(t, 91.0, res.Confidence)
}

func TestPredictFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    ferrors.Kind
	}{
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"signal_power must be a number"}`))
			},
			kind: ferrors.KindStatus,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			kind: ferrors.KindStatus,
		},
		{
			name: "missing fields",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"prediction":"High Loss"}`))
			},
			kind: ferrors.KindDecode,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			kind: ferrors.KindDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Predict(context.Background(), models.PredictRequest{})
			require.Error(t, err)
			assert.Equal(t, tt.kind, ferrors.KindOf(err))
		})
	}
}

func TestStatusErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("  bad input \n"))
	})

	_, err := c.Health(context.Background())
	var e *ferrors.Error
	require.True(t, ferrors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, e.StatusCode)
	assert.Equal(t, "bad input", e.Body)
	assert.Equal(t, "GET /api/health", e.Op)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(&Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Stats(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.Is(err, ferrors.ErrTransport))
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "transport_error", outcome(assert.AnError))
	assert.Equal(t, "status_error", outcome(ferrors.Status("x", 500, "")))
	assert.Equal(t, "decode_error", outcome(ferrors.Decode("x", nil)))
}
