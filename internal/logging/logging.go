// Package logging builds the process logger. Records are written through a
// zap core so the encoder, level filtering and output sink follow one
// configuration; callers only ever see *slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config selects the log level, encoding and destination.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	// Output is "stderr", "stdout" or a file path. Files are appended to.
	Output      string
	ServiceName string
	Version     string
}

// ParseLevel maps a level name onto zap's levels. Unknown names are info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New returns a logger for config and a function that flushes and closes the
// output. The closer is safe to call on stdio outputs.
func New(config Config) (*slog.Logger, func() error, error) {
	var (
		w         io.Writer
		closeFile = func() error { return nil }
	)
	switch config.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFile = f.Close
	}

	logger, flush := NewWithWriter(w, config)
	return logger, func() error {
		_ = flush()
		return closeFile()
	}, nil
}

// NewWithWriter returns a logger writing to w and its flush function.
func NewWithWriter(w io.Writer, config Config) (*slog.Logger, func() error) {
	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), ParseLevel(config.Level))
	logger := slog.New(NewHandler(core))
	if config.ServiceName != "" {
		logger = logger.With("service", config.ServiceName)
	}
	if config.Version != "" {
		logger = logger.With("version", config.Version)
	}
	return logger, core.Sync
}
