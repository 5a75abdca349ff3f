// Package folio ingests spreadsheet rows as repository objects and exports
// them as OAI metadata.
package folio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/cognicore/folio/pkg/folio/crosswalk"
	"github.com/cognicore/folio/pkg/folio/fields"
	"github.com/cognicore/folio/pkg/folio/index"
	"github.com/cognicore/folio/pkg/folio/ingest"
	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/resolve"
	"github.com/cognicore/folio/pkg/folio/row"
	"github.com/cognicore/folio/pkg/folio/store"
)

// Folio is the ingest and export facade
type Folio struct {
	store     store.Store
	assembler *ingest.Assembler
	formats   map[string]*crosswalk.Format
	workers   int
	logger    *slog.Logger
	ids       *store.IDSource
	now       func() time.Time
}

// Options configures a Folio instance
type Options struct {
	Store store.Store
	// Registry defaults to the embedded CSV schema.
	Registry  *fields.Registry
	Crosswalk crosswalk.Config
	Workers   int
	Logger    *slog.Logger
}

// New creates a Folio instance with the given dependencies
func New(opts Options) (*Folio, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required: %w", internalerr.ErrInvalidConfig)
	}
	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = fields.DefaultCSV(); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Folio{
		store:     opts.Store,
		assembler: ingest.NewAssembler(reg, resolve.New(opts.Store)),
		formats:   crosswalk.Formats(opts.Crosswalk),
		workers:   opts.Workers,
		logger:    logger,
		ids:       store.NewIDSource(),
		now:       time.Now,
	}, nil
}

// Close cleanly shuts down the Folio instance
func (f *Folio) Close() error {
	return f.store.Close()
}

// Ingest assembles one row and stores it, returning the new object ID.
func (f *Folio) Ingest(ctx context.Context, r row.Row) (string, error) {
	attrs, err := f.assembler.Assemble(ctx, r)
	if err != nil {
		return "", err
	}
	id, err := f.Create(ctx, attrs)
	if err != nil {
		return "", internalerr.AtLine(r.Line, err)
	}
	return id, nil
}

// Create stores an assembled record. The "type" attribute selects the
// object model and is not kept as an attribute.
func (f *Folio) Create(ctx context.Context, attrs record.Attributes) (string, error) {
	types := attrs.Strings(ingest.KeyType)
	if len(types) > 1 {
		return "", internalerr.Field(ingest.KeyType, fmt.Errorf("%d types given: %w", len(types), internalerr.ErrInvalidInput))
	}
	var typ string
	if len(types) == 1 {
		typ = types[0]
	}
	model, err := ingest.DetermineModel(typ)
	if err != nil {
		return "", internalerr.Field(ingest.KeyType, err)
	}

	attrs = attrs.Clone()
	delete(attrs, ingest.KeyType)

	now := f.now().UTC()
	id := f.ids.New(now)
	return f.store.CreateObject(ctx, store.Object{
		ID:         id,
		Model:      model,
		Attributes: attrs,
		Index:      index.Document(id, attrs),
		CreatedAt:  now,
	})
}

// Import ingests a batch of rows in order. See ingest.Importer.
func (f *Folio) Import(ctx context.Context, rows []row.Row) ([]ingest.Result, error) {
	im := ingest.NewImporter(f.assembler, f, ingest.ImporterOptions{
		Workers: f.workers,
		Logger:  f.logger,
	})
	return im.Import(ctx, rows)
}

// ImportCSV reads a CSV document and imports every row.
func (f *Folio) ImportCSV(ctx context.Context, r io.Reader) ([]ingest.Result, error) {
	rd, err := row.NewReader(r)
	if err != nil {
		return nil, err
	}
	rows, err := rd.All()
	if err != nil {
		return nil, err
	}
	return f.Import(ctx, rows)
}

// Export encodes the object id in the metadata format named by prefix.
func (f *Folio) Export(ctx context.Context, id, prefix string) (string, error) {
	format, ok := f.formats[prefix]
	if !ok {
		return "", fmt.Errorf("metadata prefix %q: %w", prefix, internalerr.ErrNotFound)
	}
	rec, found, err := f.store.ExportRecord(ctx, id)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", id, err)
	}
	if !found {
		return "", fmt.Errorf("object %s: %w", id, internalerr.ErrNotFound)
	}
	return format.Encode(rec)
}

// Prefixes lists the metadata prefixes Export accepts.
func (f *Folio) Prefixes() []string {
	out := make([]string, 0, len(f.formats))
	for p := range f.formats {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
