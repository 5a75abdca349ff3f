package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/row"
)

// DefaultWorkers is the number of rows built concurrently when
// ImporterOptions.Workers is unset.
const DefaultWorkers = 4

// Sink receives finished records in input order.
type Sink interface {
	Create(ctx context.Context, attrs record.Attributes) (string, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, attrs record.Attributes) (string, error)

// Create implements Sink.
func (f SinkFunc) Create(ctx context.Context, attrs record.Attributes) (string, error) {
	return f(ctx, attrs)
}

// Result is the outcome of one row.
type Result struct {
	Line int
	ID   string
	Err  error
}

// ImporterOptions configures an Importer.
type ImporterOptions struct {
	Workers int
	Logger  *slog.Logger
}

// Importer assembles a batch of rows and hands each record to a Sink.
//
// Extraction runs on up to Workers goroutines. Resolution and writes run
// one row at a time in input order, so a row naming a parent created
// earlier in the same batch resolves it.
type Importer struct {
	assembler *Assembler
	sink      Sink
	workers   int
	logger    *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(a *Assembler, sink Sink, opts ImporterOptions) *Importer {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{assembler: a, sink: sink, workers: workers, logger: logger}
}

// Import processes rows and returns one Result per row, in order. A row
// that fails does not stop the batch; only cancellation of ctx does.
func (im *Importer) Import(ctx context.Context, rows []row.Row) ([]Result, error) {
	drafts := make([]Draft, len(rows))
	results := make([]Result, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, r := range rows {
		results[i].Line = r.Line
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := im.assembler.Build(r)
			if err != nil {
				results[i].Err = err
				return nil
			}
			drafts[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	created, failed := 0, 0
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		if results[i].Err == nil {
			results[i].ID, results[i].Err = im.finish(ctx, drafts[i])
		}
		if results[i].Err != nil {
			failed++
			im.logger.Warn("row failed", "line", results[i].Line, "err", results[i].Err)
			continue
		}
		created++
		im.logger.Debug("row imported", "line", results[i].Line, "id", results[i].ID)
	}

	im.logger.Info("import finished", "rows", len(rows), "created", created, "failed", failed)
	return results, nil
}

func (im *Importer) finish(ctx context.Context, d Draft) (string, error) {
	attrs, err := im.assembler.Finish(ctx, d)
	if err != nil {
		return "", err
	}
	id, err := im.sink.Create(ctx, attrs)
	if err != nil {
		return "", fmt.Errorf("line %d: create object: %w", d.Line, err)
	}
	return id, nil
}
