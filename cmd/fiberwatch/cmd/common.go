package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"fiberwatch.sh/internal/client"
	"fiberwatch.sh/internal/config"
	"fiberwatch.sh/internal/logging"
	"fiberwatch.sh/internal/tracing"
	"fiberwatch.sh/internal/tui"
	"fiberwatch.sh/internal/version"
)

// env bundles what every command needs. Close flushes logs and traces.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	client *client.Client

	closers []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// setup loads configuration and builds the logger, tracer and API client.
// With toFile set, logs go to log.file or a default file so they do not
// draw over the terminal UI.
func setup(toFile bool) (*env, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}

	logCfg := logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.File,
		ServiceName: "fiberwatch",
		Version:     version.Version,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if toFile && logCfg.Output == "" {
		logCfg.Output = defaultLogFile()
	}
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, func() { _ = closeLog() })
	slog.SetDefault(logger)
	e.logger = logger

	tc := tracing.Config{
		Enabled:    cfg.Tracing.Enabled,
		Endpoint:   cfg.Tracing.Endpoint,
		Protocol:   cfg.Tracing.Protocol,
		Insecure:   cfg.Tracing.Insecure,
		SampleRate: cfg.Tracing.SampleRate,
		Version:    version.Version,
	}
	shutdown, err := tracing.Initialize(tc.FromEnv(), logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}
	e.closers = append(e.closers, shutdown)

	e.client, err = client.NewClient(&client.Config{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		e.Close()
		return nil, err
	}

	logger.Debug("Configuration loaded", "api", e.client.BaseURL(), "config", configUsed)
	return e, nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fiberwatch.log")
	}
	dir = filepath.Join(dir, "fiberwatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "fiberwatch.log")
	}
	return filepath.Join(dir, "fiberwatch.log")
}

func formConfig(f config.Form) tui.FormConfig {
	conv := func(r config.Range) tui.Range {
		return tui.Range{Min: r.Min, Max: r.Max, Step: r.Step, Initial: r.Initial}
	}
	return tui.FormConfig{
		SignalPower: conv(f.SignalPower),
		Attenuation: conv(f.Attenuation),
		Distance:    conv(f.Distance),
	}
}
