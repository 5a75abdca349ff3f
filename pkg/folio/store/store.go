package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/folio/pkg/folio/record"
)

// AccessionField is the indexed field holding an object's accession numbers.
const AccessionField = "accession_number_ssim"

// Store is the object repository objects are created in and exported from
type Store interface {
	Close() error

	// Objects
	CreateObject(ctx context.Context, o Object) (string, error)
	GetObject(ctx context.Context, id string) (Object, bool, error)

	// Index
	FindByAccession(ctx context.Context, accessionNumber string) (string, bool, error)
	ExportRecord(ctx context.Context, id string) (record.Export, bool, error)
}

// Object is a stored repository object
type Object struct {
	ID         string
	Model      string
	Attributes record.Attributes
	// Index holds the flattened, multi-valued fields exports are built from.
	Index     map[string][]string
	CreatedAt time.Time
}

// IDSource mints monotonic ULIDs. It is safe for concurrent use.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an IDSource seeded from crypto/rand.
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ID for time t.
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// ExportFromIndex converts indexed fields to an export record.
func ExportFromIndex(index map[string][]string) record.Export {
	out := make(record.Export, len(index))
	for field, vals := range index {
		vs := make([]any, len(vals))
		for i, v := range vals {
			vs[i] = v
		}
		out[field] = vs
	}
	return out
}

// CopyIndex deep-copies an index map.
func CopyIndex(index map[string][]string) map[string][]string {
	if index == nil {
		return nil
	}
	out := make(map[string][]string, len(index))
	for k, v := range index {
		out[k] = append([]string(nil), v...)
	}
	return out
}
