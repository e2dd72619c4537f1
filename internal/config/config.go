// Package config loads fiberwatch settings from flags, FIBERWATCH_*
// environment variables and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment key, e.g. FIBERWATCH_API_URL.
	EnvPrefix = "FIBERWATCH"
	// FileName is the config file searched for when none is given.
	FileName = "fiberwatch.toml"
)

// Config is the resolved configuration.
type Config struct {
	API       API       `mapstructure:"api"`
	Dashboard Dashboard `mapstructure:"dashboard"`
	Display   Display   `mapstructure:"display"`
	Log       Log       `mapstructure:"log"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Tracing   Tracing   `mapstructure:"tracing"`
	Form      Form      `mapstructure:"form"`
}

type API struct {
	URL string `mapstructure:"url"`
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration `mapstructure:"timeout"`
}

type Dashboard struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RecentLimit     int           `mapstructure:"recent_limit"`
}

type Display struct {
	Timezone string `mapstructure:"timezone"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Metrics struct {
	Addr string `mapstructure:"addr"`
}

type Tracing struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	Protocol   string  `mapstructure:"protocol"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Range bounds one prediction input.
type Range struct {
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
	Step    float64 `mapstructure:"step"`
	Initial float64 `mapstructure:"initial"`
}

type Form struct {
	SignalPower Range `mapstructure:"signal_power"`
	Attenuation Range `mapstructure:"attenuation"`
	Distance    Range `mapstructure:"distance"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:5000")
	v.SetDefault("api.timeout", "0s")

	v.SetDefault("dashboard.refresh_interval", "30s")
	v.SetDefault("dashboard.recent_limit", 20)

	v.SetDefault("display.timezone", "Local")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.protocol", "grpc")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_rate", 1.0)

	setRange(v, "form.signal_power", Range{Min: -60, Max: 0, Step: 0.5, Initial: -20})
	setRange(v, "form.attenuation", Range{Min: 0, Max: 3, Step: 0.05, Initial: 0.5})
	setRange(v, "form.distance", Range{Min: 0, Max: 10000, Step: 50, Initial: 1000})
}

func setRange(v *viper.Viper, key string, r Range) {
	v.SetDefault(key+".min", r.Min)
	v.SetDefault(key+".max", r.Max)
	v.SetDefault(key+".step", r.Step)
	v.SetDefault(key+".initial", r.Initial)
}

// Setup installs defaults and environment binding on v.
func Setup(v *viper.Viper) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads path, or the nearest FileName above the working directory
// when path is empty. It returns the file used, or "" when there is none.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path == "" {
		path = FindFile()
		if path == "" {
			return "", nil
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return v.ConfigFileUsed(), nil
}

// FindFile walks up from the working directory looking for FileName.
func FindFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.API.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.url %q must be an http(s) URL", c.API.URL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.Dashboard.RefreshInterval <= 0 {
		errs = append(errs, errors.New("dashboard.refresh_interval must be positive"))
	}
	if c.Dashboard.RecentLimit <= 0 {
		errs = append(errs, errors.New("dashboard.recent_limit must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("display.timezone: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	switch c.Tracing.Protocol {
	case "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("tracing.protocol %q must be grpc or http", c.Tracing.Protocol))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, errors.New("tracing.sample_rate must be between 0 and 1"))
	}

	ranges := []struct {
		key string
		r   Range
	}{
		{"form.signal_power", c.Form.SignalPower},
		{"form.attenuation", c.Form.Attenuation},
		{"form.distance", c.Form.Distance},
	}
	for _, rr := range ranges {
		if err := rr.r.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rr.key, err))
		}
	}

	return errors.Join(errs...)
}

func (r Range) validate() error {
	switch {
	case r.Min >= r.Max:
		return errors.New("min must be below max")
	case r.Step <= 0:
		return errors.New("step must be positive")
	case r.Initial < r.Min || r.Initial > r.Max:
		return errors.New("initial must lie within min and max")
	}
	return nil
}

// Location resolves display.timezone. "Local" and "" are the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Display.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Display.Timezone)
	}
}

// Render returns the effective settings of v as TOML.
func Render(v *viper.Viper) ([]byte, error) {
	return toml.Marshal(v.AllSettings())
}
