// Package fields declares which columns of an input format are recognized
// and how each one is turned into attribute entries.
package fields

import (
	"fmt"
	"strings"

	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/transform"
)

// Kind selects the transform applied to a field.
type Kind int

const (
	// Plain passes values through unchanged.
	Plain Kind = iota
	// Typed coerces values to FieldSpec.Type.
	Typed
	// Transformed runs the named transformer FieldSpec.Transformer.
	Transformed
	// Subfielded recombines the <key>_<suffix> columns in FieldSpec.Subfields.
	Subfielded
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Typed:
		return "typed"
	case Transformed:
		return "transformed"
	case Subfielded:
		return "subfielded"
	default:
		return "unknown"
	}
}

// FieldSpec describes one recognized field. Only the member matching
// Kind is set.
type FieldSpec struct {
	Key         string
	Kind        Kind
	Type        string
	Transformer string
	Subfields   []string
}

// Registry is the ordered list of recognized fields of one input format.
// It is immutable once built.
type Registry struct {
	format string
	fields []FieldSpec
	byKey  map[string]int
}

// NewRegistry validates specs and builds a registry from them.
func NewRegistry(format string, specs []FieldSpec) (*Registry, error) {
	r := &Registry{
		format: format,
		fields: make([]FieldSpec, 0, len(specs)),
		byKey:  make(map[string]int, len(specs)),
	}
	for i, spec := range specs {
		spec.Key = strings.TrimSpace(spec.Key)
		if err := validate(spec); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		if _, dup := r.byKey[spec.Key]; dup {
			return nil, fmt.Errorf("field %q declared twice: %w", spec.Key, internalerr.ErrInvalidConfig)
		}
		spec.Subfields = append([]string(nil), spec.Subfields...)
		r.byKey[spec.Key] = len(r.fields)
		r.fields = append(r.fields, spec)
	}
	return r, nil
}

func validate(spec FieldSpec) error {
	if spec.Key == "" {
		return fmt.Errorf("empty field key: %w", internalerr.ErrInvalidConfig)
	}
	switch spec.Kind {
	case Plain:
	case Typed:
		if !transform.IsType(spec.Type) {
			return fmt.Errorf("field %q: unknown type %q: %w", spec.Key, spec.Type, internalerr.ErrInvalidConfig)
		}
	case Transformed:
		if _, ok := transform.Lookup(spec.Transformer); !ok {
			return fmt.Errorf("field %q: unknown transformer %q: %w", spec.Key, spec.Transformer, internalerr.ErrInvalidConfig)
		}
	case Subfielded:
		if len(spec.Subfields) == 0 {
			return fmt.Errorf("field %q: empty subfield list: %w", spec.Key, internalerr.ErrInvalidConfig)
		}
		seen := make(map[string]struct{}, len(spec.Subfields))
		for _, sub := range spec.Subfields {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("field %q: empty subfield name: %w", spec.Key, internalerr.ErrInvalidConfig)
			}
			if _, dup := seen[sub]; dup {
				return fmt.Errorf("field %q: subfield %q repeated: %w", spec.Key, sub, internalerr.ErrInvalidConfig)
			}
			seen[sub] = struct{}{}
		}
	default:
		return fmt.Errorf("field %q: kind %d: %w", spec.Key, spec.Kind, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Format names the input format, e.g. "csv".
func (r *Registry) Format() string { return r.format }

// All returns the field specs in registry order.
func (r *Registry) All() []FieldSpec {
	out := make([]FieldSpec, len(r.fields))
	copy(out, r.fields)
	return out
}

// Keys returns the field keys in registry order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Lookup returns the spec for key.
func (r *Registry) Lookup(key string) (FieldSpec, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return FieldSpec{}, false
	}
	return r.fields[i], true
}

// Len returns the number of fields.
func (r *Registry) Len() int { return len(r.fields) }
