package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/folio/pkg/folio"
	"github.com/cognicore/folio/pkg/folio/config"
	"github.com/cognicore/folio/pkg/folio/crosswalk"
	"github.com/cognicore/folio/pkg/folio/store/sqlite"
)

type options struct {
	configPath string
	dbPath     string
	id         string
	prefix     string
	host       string
	list       bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("folio-export", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Config file (optional)")
	fs.StringVar(&o.dbPath, "db", "", "Database path (overrides config)")
	fs.StringVar(&o.id, "id", "", "Object ID (required)")
	fs.StringVar(&o.prefix, "prefix", "oai_cdl", "Metadata prefix")
	fs.StringVar(&o.host, "host", "", "Host name for image links (overrides config)")
	fs.BoolVar(&o.list, "list", false, "List metadata prefixes and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if !o.list && o.id == "" {
		return o, fmt.Errorf("--id required")
	}
	return o, nil
}

func (o options) loader() config.Loader {
	return config.Loader{
		ConfigPath: o.configPath,
		LogOutput:  os.Stderr,
		Apply: func(cfg *config.Config) {
			if o.dbPath != "" {
				cfg.Database = o.dbPath
			}
			if o.host != "" {
				cfg.HostName = o.host
			}
		},
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run writes the prefix listing or one exported record to w.
func run(ctx context.Context, opts options, w io.Writer) error {
	loader := opts.loader()
	components, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := components.Config

	if opts.list {
		for _, p := range crosswalk.Prefixes() {
			f := components.Formats[p]
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.Prefix, f.Schema, f.Namespace)
		}
		return nil
	}

	store, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	f, err := folio.New(folio.Options{
		Store:     store,
		Registry:  components.Registry,
		Crosswalk: crosswalk.Config{HostName: cfg.HostName},
		Logger:    components.Logger,
	})
	if err != nil {
		store.Close()
		return err
	}
	defer f.Close()

	out, err := f.Export(ctx, opts.id, opts.prefix)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
