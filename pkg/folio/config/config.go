// Package config loads process configuration and builds the components it
// names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/folio/pkg/folio/ingest"
	"github.com/cognicore/folio/pkg/folio/internalerr"
)

// Config is the process configuration file.
type Config struct {
	HostName string `yaml:"host_name"`
	Database string `yaml:"database"`
	// Schema is a field schema path. Empty selects the embedded CSV schema.
	Schema  string `yaml:"schema"`
	Workers int    `yaml:"workers"`
	Log     Log    `yaml:"log"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HostName: "localhost",
		Database: "folio.db",
		Workers:  ingest.DefaultWorkers,
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	levels  = map[string]slog.Level{"debug": slog.LevelDebug, "info": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError}
	formats = map[string]bool{"text": true, "json": true}
)

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d: %w", c.Workers, internalerr.ErrInvalidConfig)
	}
	if _, ok := levels[c.Log.Level]; !ok {
		return fmt.Errorf("log level %q: %w", c.Log.Level, internalerr.ErrInvalidConfig)
	}
	if !formats[c.Log.Format] {
		return fmt.Errorf("log format %q: %w", c.Log.Format, internalerr.ErrInvalidConfig)
	}
	return nil
}

// NewLogger builds a text or JSON logger writing to w. Unknown levels
// fall back to info.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	lvl, ok := levels[level]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
