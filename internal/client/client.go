package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fiberwatch.sh/internal/ferrors"
	"fiberwatch.sh/internal/metrics"
	"fiberwatch.sh/internal/models"
)

const (
	// RequestIDHeader is the HTTP header carrying the per-request ID
	RequestIDHeader = "X-Request-ID"

	// DefaultBaseURL is the backend's development address
	DefaultBaseURL = "http://localhost:5000"

	// DefaultRecentLimit is the number of measurements the dashboard asks for
	DefaultRecentLimit = 20

	maxErrorBody = 4 << 10
)

// Endpoint labels used in logs and metrics
const (
	EndpointStats   = "stats"
	EndpointRecent  = "recent"
	EndpointPredict = "predict"
	EndpointHealth  = "health"
)

// Client talks to the fault-detection backend.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// BaseURL returns the base URL of the backend
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Config holds client configuration
type Config struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
}

// NewClient creates a new backend client
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	if config.BaseURL == "" {
		if viper.IsSet("api.url") {
			config.BaseURL = viper.GetString("api.url")
		} else {
			config.BaseURL = DefaultBaseURL
		}
	}

	u, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must use http or https", config.BaseURL)
	}

	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(base),
			Timeout:   config.Timeout,
		},
		baseURL: u,
	}, nil
}

// Stats fetches GET /api/data/stats.
func (c *Client) Stats(ctx context.Context) (models.StatsSnapshot, error) {
	var out models.StatsSnapshot
	err := c.do(ctx, EndpointStats, http.MethodGet, "/api/data/stats", nil, nil, &out)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	if out.FaultDistribution == nil {
		return models.StatsSnapshot{}, ferrors.Decode("GET /api/data/stats", fmt.Errorf("missing fault_distribution"))
	}
	return out, nil
}

// Recent fetches GET /api/data/recent?limit=N.
func (c *Client) Recent(ctx context.Context, limit int) ([]models.Measurement, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out []models.Measurement
	if err := c.do(ctx, EndpointRecent, http.MethodGet, "/api/data/recent", q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Measurement{}
	}
	return out, nil
}

// Predict submits POST /predict.
func (c *Client) Predict(ctx context.Context, req models.PredictRequest) (models.PredictionResult, error) {
	var out models.PredictionResult
	if err := c.do(ctx, EndpointPredict, http.MethodPost, "/predict", nil, req, &out); err != nil {
		return models.PredictionResult{}, err
	}
	return out, nil
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (models.Health, error) {
	var out models.Health
	if err := c.do(ctx, EndpointHealth, http.MethodGet, "/api/health", nil, nil, &out); err != nil {
		return models.Health{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) (err error) {
	op := method + " " + path
	start := time.Now()
	defer func() {
		metrics.RecordAPIRequest(endpoint, outcome(err), time.Since(start).Seconds())
	}()

	u := c.baseURL.ResolveReference(&url.URL{Path: c.baseURL.Path + path})
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return ferrors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return ferrors.Transport(op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ferrors.Transport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ferrors.Status(op, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ferrors.Decode(op, err)
	}
	return nil
}

func outcome(err error) string {
	switch ferrors.KindOf(err) {
	case 0:
		if err != nil {
			return metrics.OutcomeTransport
		}
		return metrics.OutcomeSuccess
	case ferrors.KindStatus:
		return metrics.OutcomeStatus
	case ferrors.KindDecode:
		return metrics.OutcomeDecode
	default:
		return metrics.OutcomeTransport
	}
}
