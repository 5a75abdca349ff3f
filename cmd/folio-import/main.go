package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/folio/pkg/folio"
	"github.com/cognicore/folio/pkg/folio/config"
	"github.com/cognicore/folio/pkg/folio/crosswalk"
	"github.com/cognicore/folio/pkg/folio/ingest"
	"github.com/cognicore/folio/pkg/folio/store/sqlite"
)

// options holds parsed flags. set records which flags were given so that
// only those override the config file.
type options struct {
	configPath string
	csvPath    string
	dbPath     string
	schemaPath string
	workers    int
	logLevel   string
	logFormat  string
	set        map[string]bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("folio-import", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Config file (optional)")
	fs.StringVar(&o.csvPath, "csv", "", "Input CSV file (required)")
	fs.StringVar(&o.dbPath, "db", "", "Database path (overrides config)")
	fs.StringVar(&o.schemaPath, "schema", "", "Field schema file (overrides config)")
	fs.IntVar(&o.workers, "workers", 0, "Rows built concurrently (overrides config)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	fs.StringVar(&o.logFormat, "log-format", "", "text or json (overrides config)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.csvPath == "" {
		return o, fmt.Errorf("--csv required")
	}
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

func (o options) loader(logOutput io.Writer) config.Loader {
	return config.Loader{
		ConfigPath: o.configPath,
		SchemaPath: o.schemaPath,
		LogOutput:  logOutput,
		Apply: func(cfg *config.Config) {
			if o.set["db"] {
				cfg.Database = o.dbPath
			}
			if o.set["workers"] {
				cfg.Workers = o.workers
			}
			if o.set["log-level"] {
				cfg.Log.Level = o.logLevel
			}
			if o.set["log-format"] {
				cfg.Log.Format = o.logFormat
			}
		},
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts, os.Stderr)
	stop()
	os.Exit(code)
}

// run imports the CSV named by opts and returns the process exit code.
func run(ctx context.Context, opts options, logOutput io.Writer) int {
	loader := opts.loader(logOutput)
	components, err := loader.Load()
	if err != nil {
		fmt.Fprintln(logOutput, "Failed to load configuration:", err)
		return 1
	}
	cfg, logger := components.Config, components.Logger

	store, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		logger.Error("open database", "db", cfg.Database, "err", err)
		return 1
	}

	f, err := folio.New(folio.Options{
		Store:     store,
		Registry:  components.Registry,
		Crosswalk: crosswalk.Config{HostName: cfg.HostName},
		Workers:   cfg.Workers,
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		logger.Error("create folio", "err", err)
		return 1
	}
	defer f.Close()

	in, err := os.Open(opts.csvPath)
	if err != nil {
		logger.Error("open csv", "err", err)
		return 1
	}
	defer in.Close()

	logger.Info("import started", "csv", opts.csvPath, "db", cfg.Database, "workers", cfg.Workers)

	results, err := f.ImportCSV(ctx, in)
	return report(results, err, logger)
}

// report logs the batch outcome and returns the process exit code.
func report(results []ingest.Result, err error, logger *slog.Logger) int {
	if err != nil {
		logger.Error("import aborted", "err", err)
		return 1
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Error("some rows failed", "failed", failed, "rows", len(results))
		return 2
	}
	return 0
}
