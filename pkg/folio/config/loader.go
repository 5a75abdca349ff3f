package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cognicore/folio/pkg/folio/crosswalk"
	"github.com/cognicore/folio/pkg/folio/fields"
)

// Loader loads configuration and constructs components
type Loader struct {
	// ConfigPath is optional; defaults apply when empty.
	ConfigPath string
	// SchemaPath overrides the schema named in the config file.
	SchemaPath string
	// Apply, when set, adjusts the loaded config before components are
	// built, e.g. with command line flags.
	Apply func(cfg *Config)
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Components holds everything built from configuration
type Components struct {
	Config   *Config
	Registry *fields.Registry
	Formats  map[string]*crosswalk.Format
	Logger   *slog.Logger
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		var err error
		cfg, err = Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if l.SchemaPath != "" {
		cfg.Schema = l.SchemaPath
	}
	if l.Apply != nil {
		l.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	comp := &Components{Config: cfg}

	var err error
	if cfg.Schema != "" {
		comp.Registry, err = fields.LoadFile(cfg.Schema)
	} else {
		comp.Registry, err = fields.DefaultCSV()
	}
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	comp.Formats = crosswalk.Formats(crosswalk.Config{HostName: cfg.HostName})

	out := l.LogOutput
	if out == nil {
		out = os.Stderr
	}
	comp.Logger = NewLogger(cfg.Log.Level, cfg.Log.Format, out)

	return comp, nil
}
