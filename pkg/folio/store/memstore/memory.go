package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	ids       *store.IDSource
	now       func() time.Time
	objects   map[string]store.Object
	accession map[string][]string // accession number -> object IDs, creation order
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:       store.NewIDSource(),
		now:       time.Now,
		objects:   make(map[string]store.Object),
		accession: make(map[string][]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateObject stores o, minting an ID when o has none.
func (s *Store) CreateObject(ctx context.Context, o store.Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC()
	}
	if o.ID == "" {
		o.ID = s.ids.New(o.CreatedAt)
	}
	if old, ok := s.objects[o.ID]; ok {
		s.unindex(old)
	}

	s.objects[o.ID] = copyObject(o)
	for _, a := range o.Index[store.AccessionField] {
		s.accession[a] = append(s.accession[a], o.ID)
	}
	return o.ID, nil
}

func (s *Store) unindex(o store.Object) {
	for _, a := range o.Index[store.AccessionField] {
		ids := s.accession[a]
		kept := ids[:0]
		for _, id := range ids {
			if id != o.ID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(s.accession, a)
		} else {
			s.accession[a] = kept
		}
	}
}

// GetObject returns an object by ID.
func (s *Store) GetObject(ctx context.Context, id string) (store.Object, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.objects[id]; ok {
		return copyObject(o), true, nil
	}
	return store.Object{}, false, nil
}

// FindByAccession returns the earliest object indexed under accessionNumber.
func (s *Store) FindByAccession(ctx context.Context, accessionNumber string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.accession[accessionNumber]
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

// ExportRecord returns the indexed fields of an object.
func (s *Store) ExportRecord(ctx context.Context, id string) (record.Export, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[id]
	if !ok {
		return nil, false, nil
	}
	return store.ExportFromIndex(o.Index), true, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func copyObject(o store.Object) store.Object {
	cp := o
	if o.Attributes != nil {
		cp.Attributes = o.Attributes.Clone()
	}
	cp.Index = store.CopyIndex(o.Index)
	return cp
}
