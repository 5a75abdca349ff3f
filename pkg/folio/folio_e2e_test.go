package folio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/folio/pkg/folio/crosswalk"
	"github.com/cognicore/folio/pkg/folio/ingest"
	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/store"
	"github.com/cognicore/folio/pkg/folio/store/memstore"
	"github.com/cognicore/folio/pkg/folio/store/sqlite"
)

const batch = `type,accession_number,title,access_policy,parent_accession_number,files,date_created_start,language,north_bound_latitude
Collection,COLL-1,Goleta Maps,public,,,,,
Image,IMG-1,Goleta Slough,public,COLL-1,scans/p1.tif,1900,eng,34.42
Image,IMG-2,No Policy,,COLL-1,,,,
,IMG-3,No Type,ucsb,,,,,
`

// TestEndToEnd runs the full workflow against each store backend:
// 1. CSV import with a parent created in the same batch
// 2. Per-row failures
// 3. Export in both metadata formats
func TestEndToEnd(t *testing.T) {
	backends := map[string]func(t *testing.T) store.Store{
		"memory": func(t *testing.T) store.Store { return memstore.New() },
		"sqlite": func(t *testing.T) store.Store {
			s, err := sqlite.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "folio.db"))
			require.NoError(t, err)
			return s
		},
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			runEndToEnd(t, open(t))
		})
	}
}

func runEndToEnd(t *testing.T, s store.Store) {
	ctx := context.Background()

	f, err := New(Options{
		Store:     s,
		Crosswalk: crosswalk.Config{HostName: "alexandria.example.edu"},
		Workers:   2,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	defer f.Close()

	// === Phase 1: Import ===
	results, err := f.ImportCSV(ctx, strings.NewReader(batch))
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.NoError(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.True(t, errors.Is(results[2].Err, internalerr.ErrNoAccessPolicy))
	assert.True(t, errors.Is(results[3].Err, internalerr.ErrInvalidInput))
	assert.Equal(t, 5, results[3].Line)

	collID, itemID := results[0].ID, results[1].ID

	// === Phase 2: Stored objects ===
	item, ok, err := s.GetObject(ctx, itemID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Image", item.Model)
	assert.Equal(t, []any{collID}, item.Attributes[ingest.KeyParentID])
	assert.False(t, item.Attributes.Has(ingest.KeyType))
	assert.Equal(t, []any{"northlimit=34.42; units=degrees; projection=EPSG:4326"}, item.Attributes[ingest.KeyCoverage])

	found, ok, err := s.FindByAccession(ctx, "COLL-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, collID, found)

	// === Phase 3: Export ===
	cdl, err := f.Export(ctx, itemID, "oai_cdl")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cdl, "<oai_cdl:cdl "))
	for _, want := range []string{
		"<dc:date>1900</dc:date>",
		"<dc:language>http://id.loc.gov/vocabulary/iso639-2/eng</dc:language>",
		"<dc:title>Goleta Slough</dc:title>",
		"<dcterms:accessRights>authorities/policies/public</dcterms:accessRights>",
		"<edm:object>https://alexandria.example.edu/image-service/" + itemID + "/files/p1.tif/full/400,/0/default.jpg</edm:object>",
	} {
		assert.Contains(t, cdl, want)
	}

	again, err := f.Export(ctx, itemID, "oai_cdl")
	require.NoError(t, err)
	assert.Equal(t, cdl, again)

	dc, err := f.Export(ctx, collID, "oai_dc")
	require.NoError(t, err)
	assert.Contains(t, dc, "<dc:title>Goleta Maps</dc:title>")
	assert.NotContains(t, dc, "edm:object")

	_, err = f.Export(ctx, itemID, "marc21")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))
	_, err = f.Export(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "oai_cdl")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))

	assert.Equal(t, []string{"oai_cdl", "oai_dc"}, f.Prefixes())
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
}

func TestPaddedAccessionNumbersResolve(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	f, err := New(Options{Store: s, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	csv := "type,accession_number,access_policy,parent_accession_number\n" +
		"Collection, COLL-1 ,public,\n" +
		"Image,IMG-1,public, COLL-1\n"
	results, err := f.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	require.NoError(t, results[1].Err)

	item, ok, err := s.GetObject(ctx, results[1].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{results[0].ID}, item.Attributes[ingest.KeyParentID])

	found, ok, err := s.FindByAccession(ctx, "COLL-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, results[0].ID, found)
}
