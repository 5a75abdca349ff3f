package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "folio.yaml", `host_name: alexandria.ucsb.edu
database: /var/lib/folio/folio.db
workers: 8
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.HostName != "alexandria.ucsb.edu" {
		t.Errorf("Expected host name alexandria.ucsb.edu, got %q", cfg.HostName)
	}
	if cfg.Database != "/var/lib/folio/folio.db" {
		t.Errorf("Unexpected database %q", cfg.Database)
	}
	if cfg.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("host_name: example.edu\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected default 4 workers, got %d", cfg.Workers)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Expected default log config, got %+v", cfg.Log)
	}

	cfg, err = Parse(nil)
	if err != nil {
		t.Fatalf("Empty config should succeed: %v", err)
	}
	if cfg.HostName != "localhost" {
		t.Errorf("Expected default host, got %q", cfg.HostName)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "hostname: typo.edu\n",
		"bad level":    "log:\n  level: loud\n",
		"bad format":   "log:\n  format: xml\n",
		"neg workers":  "workers: -1\n",
		"not yaml map": "- a\n- b\n",
	}
	for name, content := range cases {
		_, err := Parse([]byte(content))
		if !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestLoadNonExistent(t *testing.T) {
	if _, err := Load("/nonexistent/folio.yaml"); err == nil {
		t.Error("Should error on nonexistent config")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "line", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"line":3`) {
		t.Errorf("Expected JSON warn record, got %q", out)
	}

	buf.Reset()
	NewLogger("bogus", "text", &buf).Info("fallback")
	if !strings.Contains(buf.String(), "msg=fallback") {
		t.Errorf("Expected text record at info, got %q", buf.String())
	}
}
