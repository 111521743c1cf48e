package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"

	"github.com/menta2k/socialfit/pkg/canvas"
	"github.com/menta2k/socialfit/pkg/output"
	"github.com/menta2k/socialfit/pkg/source"
	"github.com/menta2k/socialfit/pkg/types"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "SOCIALFIT_"

// Config holds the application configuration
type Config struct {
	Source SourceConfig `json:"source" envPrefix:"SOURCE_"`
	Canvas CanvasConfig `json:"canvas" envPrefix:"CANVAS_"`
	Output OutputConfig `json:"output" envPrefix:"OUTPUT_"`
	Log    LogConfig    `json:"log" envPrefix:"LOG_"`
}

// SourceConfig holds configuration for fetching and loading source images
type SourceConfig struct {
	TimeoutSeconds  int      `json:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	MaxBytes        int64    `json:"max_bytes" env:"MAX_BYTES"`
	UserAgent       string   `json:"user_agent" env:"USER_AGENT"`
	AllowedHosts    []string `json:"allowed_hosts" env:"ALLOWED_HOSTS"`
	CacheMaxBytes   int64    `json:"cache_max_bytes" env:"CACHE_MAX_BYTES"`
	CacheTTLSeconds int      `json:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`
}

// CanvasConfig holds configuration for canvas fitting
type CanvasConfig struct {
	Background string `json:"background" env:"BACKGROUND"`
	Resample   string `json:"resample" env:"RESAMPLE"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir      string `json:"dir" env:"DIR"`
	Format   string `json:"format" env:"FORMAT"`
	Quality  int    `json:"quality" env:"QUALITY"`
	Lossless bool   `json:"lossless" env:"LOSSLESS"`
	Prefix   string `json:"prefix" env:"PREFIX"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `json:"level" env:"LEVEL"`
	Development bool   `json:"development" env:"DEVELOPMENT"`
}

// Default returns a configuration with default values
func Default() *Config {
	src := source.DefaultConfig()
	return &Config{
		Source: SourceConfig{
			TimeoutSeconds:  int(src.Timeout / time.Second),
			MaxBytes:        src.MaxBytes,
			UserAgent:       src.UserAgent,
			CacheMaxBytes:   0,
			CacheTTLSeconds: int(src.CacheTTL / time.Second),
		},
		Canvas: CanvasConfig{
			Background: "#FFFFFF",
			Resample:   "lanczos",
		},
		Output: OutputConfig{
			Dir:     ".",
			Format:  "jpg",
			Quality: output.DefaultQuality,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (if path is not empty), then environment overrides. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields from SOCIALFIT_* environment variables, e.g.
// SOCIALFIT_OUTPUT_QUALITY=80. Unset variables leave fields untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Source.TimeoutSeconds < 1 {
		return fmt.Errorf("source.timeout_seconds must be positive")
	}

	if c.Source.MaxBytes < 1 {
		return fmt.Errorf("source.max_bytes must be positive")
	}

	if c.Source.CacheMaxBytes < 0 {
		return fmt.Errorf("source.cache_max_bytes cannot be negative")
	}

	if c.Source.CacheMaxBytes > 0 && c.Source.CacheTTLSeconds < 1 {
		return fmt.Errorf("source.cache_ttl_seconds must be positive when the cache is enabled")
	}

	if _, err := canvas.ParseColor(c.Canvas.Background); err != nil {
		return fmt.Errorf("canvas.background: %w", err)
	}

	if _, err := canvas.ParseResampleFilter(c.Canvas.Resample); err != nil {
		return fmt.Errorf("canvas.resample: %w", err)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if !output.Supported(c.Output.Format) {
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

// SourceOptions converts the source section for the loader
func (c *Config) SourceOptions() source.Config {
	return source.Config{
		Timeout:      time.Duration(c.Source.TimeoutSeconds) * time.Second,
		MaxBytes:     c.Source.MaxBytes,
		UserAgent:    c.Source.UserAgent,
		AllowedHosts: c.Source.AllowedHosts,
		CacheMaxCost: c.Source.CacheMaxBytes,
		CacheTTL:     time.Duration(c.Source.CacheTTLSeconds) * time.Second,
	}
}

// CanvasOptions converts the canvas section for the fitter
func (c *Config) CanvasOptions() (canvas.Config, error) {
	bg, err := canvas.ParseColor(c.Canvas.Background)
	if err != nil {
		return canvas.Config{}, err
	}
	filter, err := canvas.ParseResampleFilter(c.Canvas.Resample)
	if err != nil {
		return canvas.Config{}, err
	}
	return canvas.Config{Background: bg, Filter: filter}, nil
}

// EncodeOptions converts the output section for the writer
func (c *Config) EncodeOptions() types.EncodeOptions {
	return types.EncodeOptions{
		Format:   c.Output.Format,
		Quality:  c.Output.Quality,
		Lossless: c.Output.Lossless,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "socialfit", "config.json")
}
