// Package ingest assembles spreadsheet rows into attribute records ready
// for object creation.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/folio/pkg/folio/fields"
	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/policy"
	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/row"
	"github.com/cognicore/folio/pkg/folio/transform"
)

// Attribute keys the assembler reads or writes.
const (
	KeyType                    = "type"
	KeyAccessionNumber         = "accession_number"
	KeyAccessPolicy            = "access_policy"
	KeyAdminPolicyID           = "admin_policy_id"
	KeyParentAccessionNumber   = "parent_accession_number"
	KeyParentID                = "parent_id"
	KeyIndexMapAccessionNumber = "index_map_accession_number"
	KeyIndexMapID              = "index_map_id"
	KeyCoverage                = "coverage"
)

// bound pairs a coordinate field with its DCMI box label. The order is
// the order segments appear in the box.
type bound struct {
	key   string
	label string
}

var bounds = []bound{
	{"north_bound_latitude", "northlimit"},
	{"east_bound_longitude", "eastlimit"},
	{"south_bound_latitude", "southlimit"},
	{"west_bound_longitude", "westlimit"},
}

// Resolver resolves accession numbers to object IDs.
type Resolver interface {
	Resolve(ctx context.Context, accessionNumbers []string) (string, bool, error)
}

// Assembler turns rows into attribute records.
type Assembler struct {
	fields   *fields.Registry
	resolver Resolver
}

// NewAssembler creates an Assembler. A nil resolver leaves every parent
// reference unresolved.
func NewAssembler(reg *fields.Registry, resolver Resolver) *Assembler {
	return &Assembler{fields: reg, resolver: resolver}
}

// Draft is a record that has been extracted but not yet resolved or
// assigned a policy.
type Draft struct {
	Line       int
	Attributes record.Attributes
}

// Assemble runs every pass over r and returns the finished record.
func (a *Assembler) Assemble(ctx context.Context, r row.Row) (record.Attributes, error) {
	d, err := a.Build(r)
	if err != nil {
		return nil, err
	}
	return a.Finish(ctx, d)
}

// Build extracts and transforms every registry field, then normalizes
// coordinates. It touches no shared state and is safe to run in parallel.
func (a *Assembler) Build(r row.Row) (Draft, error) {
	attrs := record.Attributes{}
	for _, spec := range a.fields.All() {
		m, err := fieldMapping(spec, r)
		if err != nil {
			return Draft{}, internalerr.AtLine(r.Line, err)
		}
		if err := attrs.Merge(m); err != nil {
			return Draft{}, internalerr.AtLine(r.Line, internalerr.Field(spec.Key, err))
		}
	}
	if err := dcmiBox(attrs); err != nil {
		return Draft{}, internalerr.AtLine(r.Line, err)
	}
	return Draft{Line: r.Line, Attributes: attrs}, nil
}

// Finish resolves structural references, cleans keys and assigns the
// access policy.
func (a *Assembler) Finish(ctx context.Context, d Draft) (record.Attributes, error) {
	attrs, err := a.structural(ctx, d.Attributes)
	if err != nil {
		return nil, internalerr.AtLine(d.Line, err)
	}
	attrs, err = stripKeys(attrs)
	if err != nil {
		return nil, internalerr.AtLine(d.Line, err)
	}
	if err := assignAccessPolicy(attrs); err != nil {
		return nil, internalerr.AtLine(d.Line, err)
	}
	return attrs, nil
}

func fieldMapping(spec fields.FieldSpec, r row.Row) (record.Attributes, error) {
	switch spec.Kind {
	case fields.Typed:
		return transform.Typed(spec.Key, spec.Type, row.ValuesFor(spec.Key, r))
	case fields.Transformed:
		return transform.Apply(spec.Transformer, spec.Key, row.ValuesFor(spec.Key, r))
	case fields.Subfielded:
		return transform.Subfields(spec.Key, spec.Subfields, r)
	default:
		return transform.Default(spec.Key, row.ValuesFor(spec.Key, r)), nil
	}
}

// dcmiBox replaces the bound coordinate fields with one DCMI box coverage
// string, e.g. "northlimit=43.039; eastlimit=-69.856; units=degrees;
// projection=EPSG:4326". Bounds not supplied are left out.
func dcmiBox(attrs record.Attributes) error {
	var b strings.Builder
	present := false
	for _, bd := range bounds {
		vals, ok := attrs[bd.key]
		if !ok {
			continue
		}
		present = true
		if len(vals) != 1 {
			return internalerr.Field(bd.key, fmt.Errorf("want one coordinate, got %d: %w", len(vals), internalerr.ErrMalformedRow))
		}
		v, err := record.Format(vals[0])
		if err != nil {
			return internalerr.Field(bd.key, err)
		}
		v = strings.TrimSpace(v)
		if _, err := transform.ParseDegrees(v); err != nil {
			return internalerr.Field(bd.key, err)
		}
		fmt.Fprintf(&b, "%s=%s; ", bd.label, v)
	}
	if !present {
		return nil
	}
	if attrs.Has(KeyCoverage) {
		return internalerr.Field(KeyCoverage, fmt.Errorf("coordinates and coverage both given: %w", internalerr.ErrDuplicate))
	}
	for _, bd := range bounds {
		delete(attrs, bd.key)
	}
	b.WriteString("units=degrees; projection=EPSG:4326")
	attrs[KeyCoverage] = []any{b.String()}
	return nil
}

// structural resolves the parent accession number to a parent ID. The
// index map accession number is kept verbatim: map sets are usually
// created before the index map they name exists.
func (a *Assembler) structural(ctx context.Context, attrs record.Attributes) (record.Attributes, error) {
	if vals, ok := attrs[KeyParentAccessionNumber]; ok {
		numbers := attrs.Strings(KeyParentAccessionNumber)
		delete(attrs, KeyParentAccessionNumber)
		if a.resolver != nil && len(vals) > 0 {
			id, found, err := a.resolver.Resolve(ctx, numbers)
			if err != nil {
				return nil, internalerr.Field(KeyParentAccessionNumber, err)
			}
			if found {
				if err := put(attrs, KeyParentID, []any{id}); err != nil {
					return nil, err
				}
			}
		}
	}

	if vals, ok := attrs[KeyIndexMapAccessionNumber]; ok {
		delete(attrs, KeyIndexMapAccessionNumber)
		if len(vals) > 0 {
			if err := put(attrs, KeyIndexMapID, vals); err != nil {
				return nil, err
			}
		}
	}
	return attrs, nil
}

// stripKeys trims whitespace off every key. Two keys that trim to the same
// name are a duplicate.
func stripKeys(attrs record.Attributes) (record.Attributes, error) {
	out := make(record.Attributes, len(attrs))
	for _, k := range attrs.Keys() {
		if err := put(out, strings.TrimSpace(k), attrs[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func assignAccessPolicy(attrs record.Attributes) error {
	vals := attrs.Strings(KeyAccessPolicy)
	if len(vals) == 0 {
		return internalerr.Field(KeyAccessPolicy, internalerr.ErrNoAccessPolicy)
	}
	if len(vals) > 1 {
		return internalerr.Field(KeyAccessPolicy, fmt.Errorf("%w: %d values given", internalerr.ErrInvalidAccessPolicy, len(vals)))
	}
	id, err := policy.Resolve(vals[0])
	if err != nil {
		return internalerr.Field(KeyAccessPolicy, err)
	}
	delete(attrs, KeyAccessPolicy)
	return put(attrs, KeyAdminPolicyID, []any{id})
}

func put(attrs record.Attributes, key string, vals []any) error {
	if attrs.Has(key) {
		return internalerr.Field(key, internalerr.ErrDuplicate)
	}
	attrs[key] = vals
	return nil
}
