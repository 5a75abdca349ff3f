package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/folio/pkg/folio/ingest"
	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/store/sqlite"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlagsRequiresCSV(t *testing.T) {
	if _, err := parseFlags([]string{"--db", "x.db"}); err == nil {
		t.Error("parseFlags should fail without --csv")
	}
	if _, err := parseFlags([]string{"--csv", "in.csv", "--workers", "many"}); err == nil {
		t.Error("parseFlags should fail on a non-integer --workers")
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "folio.yaml", `database: from-file.db
workers: 2
log:
  level: warn
`)

	opts, err := parseFlags([]string{"--config", cfgPath, "--csv", "in.csv", "--workers", "9"})
	if err != nil {
		t.Fatal(err)
	}
	loader := opts.loader(io.Discard)
	comp, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if comp.Config.Workers != 9 {
		t.Errorf("Expected --workers to win, got %d", comp.Config.Workers)
	}
	if comp.Config.Database != "from-file.db" {
		t.Errorf("Unset --db should keep the file value, got %q", comp.Config.Database)
	}
	if comp.Config.Log.Level != "warn" {
		t.Errorf("Unset --log-level should keep the file value, got %q", comp.Config.Log.Level)
	}

	opts, err = parseFlags([]string{"--config", cfgPath, "--csv", "in.csv", "--workers", "0", "--db", "flag.db"})
	if err != nil {
		t.Fatal(err)
	}
	loader = opts.loader(io.Discard)
	comp, err = loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if comp.Config.Workers != 0 || comp.Config.Database != "flag.db" {
		t.Errorf("Explicit flags should override even zero values, got %+v", comp.Config)
	}
}

func TestReportExitCodes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if code := report([]ingest.Result{{Line: 2, ID: "a"}}, nil, logger); code != 0 {
		t.Errorf("Expected 0 for a clean batch, got %d", code)
	}
	if code := report([]ingest.Result{{Line: 2, ID: "a"}, {Line: 3, Err: internalerr.ErrNoAccessPolicy}}, nil, logger); code != 2 {
		t.Errorf("Expected 2 when a row fails, got %d", code)
	}
	if code := report(nil, context.Canceled, logger); code != 1 {
		t.Errorf("Expected 1 when the import aborts, got %d", code)
	}
}

func TestRunImportsIntoDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "folio.db")
	csvPath := writeFile(t, dir, "in.csv", "type,accession_number,title,access_policy\nImage,IMG-1,Goleta,public\n")

	opts, err := parseFlags([]string{"--csv", csvPath, "--db", dbPath, "--log-format", "json"})
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	if code := run(context.Background(), opts, &logs); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, logs.String())
	}
	if !strings.Contains(logs.String(), `"msg":"import finished"`) {
		t.Errorf("Expected JSON summary log, got %q", logs.String())
	}

	s, err := sqlite.OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok, err := s.FindByAccession(context.Background(), "IMG-1"); err != nil || !ok {
		t.Errorf("Imported object not found: ok=%v err=%v", ok, err)
	}
}

func TestRunReportsFailedRows(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "in.csv", "type,title,access_policy\nImage,Goleta,bogus\n")

	opts, err := parseFlags([]string{"--csv", csvPath, "--db", filepath.Join(dir, "folio.db")})
	if err != nil {
		t.Fatal(err)
	}
	if code := run(context.Background(), opts, io.Discard); code != 2 {
		t.Errorf("Expected exit 2, got %d", code)
	}

	opts.csvPath = filepath.Join(dir, "missing.csv")
	if code := run(context.Background(), opts, io.Discard); code != 1 {
		t.Errorf("Expected exit 1 for a missing CSV, got %d", code)
	}
}

