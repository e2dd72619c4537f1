package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, b []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	return out
}

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger, flush := NewWithWriter(&buf, Config{Level: "info", Format: "json", ServiceName: "fiberwatch"})

	logger.Debug("hidden")
	logger.Info("Refreshed", "endpoint", "stats", "seq", 3, "took", 2*time.Second, "ok", true)
	logger.With("component", "poller").WithGroup("poll").Error("Failed", "err", errors.New("boom"))
	require.NoError(t, flush())

	lines := decodeLines(t, buf.Bytes())
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "Refreshed", first["message"])
	assert.Equal(t, "fiberwatch", first["service"])
	assert.Equal(t, "stats", first["endpoint"])
	assert.Equal(t, float64(3), first["seq"])
	assert.Equal(t, "2s", first["took"])
	assert.Equal(t, true, first["ok"])
	assert.Contains(t, first["caller"], "logging_test.go")

	second := lines[1]
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "poller", second["component"])
	assert.Equal(t, "boom", second["poll.err"])
}

func TestGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, flush := NewWithWriter(&buf, Config{Level: "debug"})

	logger.Debug("Chart", slog.Group("chart", "slot", "probability", "live", 1))
	require.NoError(t, flush())

	lines := decodeLines(t, buf.Bytes())
	require.Len(t, lines, 1)
	assert.Equal(t, "probability", lines[0]["chart.slot"])
	assert.Equal(t, float64(1), lines[0]["chart.live"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))

	assert.Equal(t, zapcore.DebugLevel, Level(slog.LevelDebug))
	assert.Equal(t, zapcore.WarnLevel, Level(slog.LevelWarn))
	assert.Equal(t, zapcore.ErrorLevel, Level(slog.LevelError+4))
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiberwatch.log")
	logger, closeFn, err := New(Config{Output: path, Format: "json"})
	require.NoError(t, err)

	logger.Warn("Throttled refresh")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := decodeLines(t, b)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestNewBadPath(t *testing.T) {
	_, _, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}
