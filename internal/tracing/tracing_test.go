package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b=2,broken")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg := Config{Protocol: "grpc", SampleRate: 1}.FromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.Equal(t, "http", cfg.Protocol)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg.Headers)
	assert.Equal(t, 0.25, cfg.SampleRate)
}

func TestInitializeDisabled(t *testing.T) {
	shutdown, err := Initialize(Config{Protocol: "grpc", SampleRate: 1}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestInitializeUnknownProtocol(t *testing.T) {
	_, err := Initialize(Config{Enabled: true, Endpoint: "localhost:4317", Protocol: "udp"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown protocol")
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), Sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), Sampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.5).Description(), Sampler(0.5).Description())
}

func TestEnd(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "ok")
	End(span, nil)
	_, span = StartSpan(context.Background(), "failed")
	End(span, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
}
