package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/store"
)

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.CreateObject(ctx, store.Object{
		Model:      "MapSet",
		Attributes: record.Attributes{"title": {"Set"}},
		Index:      map[string][]string{store.AccessionField: {"MS-1"}},
	})
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	got, ok, err := s.FindByAccession(ctx, "MS-1")
	if err != nil || !ok || got != id {
		t.Fatalf("FindByAccession = %q, %v, %v; want %q", got, ok, err, id)
	}

	if _, ok, _ := s.FindByAccession(ctx, "MS-2"); ok {
		t.Error("unknown accession number should not resolve")
	}
}

func TestGetObjectReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, _ := s.CreateObject(ctx, store.Object{
		Attributes: record.Attributes{"title": {"Original"}},
		Index:      map[string][]string{"title_tesim": {"Original"}},
	})

	obj, ok, _ := s.GetObject(ctx, id)
	if !ok {
		t.Fatal("expected object")
	}
	obj.Attributes["title"][0] = "Changed"
	obj.Index["title_tesim"][0] = "Changed"

	again, _, _ := s.GetObject(ctx, id)
	if again.Attributes["title"][0] != "Original" || again.Index["title_tesim"][0] != "Original" {
		t.Error("mutating a returned object must not change the store")
	}
}

func TestReplaceDropsOldAccession(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, _ := s.CreateObject(ctx, store.Object{Index: map[string][]string{store.AccessionField: {"old"}}})
	if _, err := s.CreateObject(ctx, store.Object{ID: id, Index: map[string][]string{store.AccessionField: {"new"}}}); err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	if _, ok, _ := s.FindByAccession(ctx, "old"); ok {
		t.Error("old accession should be unindexed")
	}
	if got, ok, _ := s.FindByAccession(ctx, "new"); !ok || got != id {
		t.Errorf("new accession should resolve to %q", id)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 object, got %d", s.Len())
	}
}

func TestExportRecord(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, _ := s.CreateObject(ctx, store.Object{Index: map[string][]string{"title_tesim": {"A", "B"}}})

	exp, ok, err := s.ExportRecord(ctx, id)
	if err != nil || !ok {
		t.Fatalf("ExportRecord: %v %v", ok, err)
	}
	if len(exp["title_tesim"]) != 2 || exp["title_tesim"][1] != "B" {
		t.Errorf("unexpected export %v", exp)
	}

	if _, ok, _ := s.ExportRecord(ctx, "missing"); ok {
		t.Error("missing object should not export")
	}
}
