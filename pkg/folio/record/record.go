// Package record holds the attribute record produced by ingest and the
// read-only export record consumed by the crosswalk encoders.
package record

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

// Attributes maps an attribute key to its ordered values. Values are
// string, int64, float64, bool, Date or Compound.
type Attributes map[string][]any

// Export is a flattened view of a stored object's indexed fields.
type Export map[string][]any

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Strings returns the values of key formatted as strings.
func (a Attributes) Strings(key string) []string {
	vals := a[key]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		s, err := Format(v)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Keys returns the attribute keys in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies every key of other into a. A key already present in a is
// an ErrDuplicate; a is left unchanged in that case.
func (a Attributes) Merge(other Attributes) error {
	for k := range other {
		if _, ok := a[k]; ok {
			return fmt.Errorf("merge key %q: %w", k, internalerr.ErrDuplicate)
		}
	}
	for k, v := range other {
		a[k] = v
	}
	return nil
}

// Clone returns a copy with its own value slices.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = append([]any(nil), v...)
	}
	return out
}

// Strings returns the values of field formatted as strings.
// Unsupported values are an ErrUnsupportedValue naming the field.
func (e Export) Strings(field string) ([]string, error) {
	vals := e[field]
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		s, err := Format(v)
		if err != nil {
			return nil, internalerr.Field(field, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Format renders a single value as text.
func Format(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("%T: %w", v, internalerr.ErrUnsupportedValue)
	}
}
