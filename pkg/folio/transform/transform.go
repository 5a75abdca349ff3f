// Package transform turns the raw strings extracted for one field into
// attribute entries. Every transform returns an empty mapping when given
// no values, so a blank column never aborts a row.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/row"
)

// Default passes values through unchanged under key.
func Default(key string, values []string) record.Attributes {
	if len(values) == 0 {
		return record.Attributes{}
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return record.Attributes{key: out}
}

// coercer converts one trimmed raw value.
type coercer func(string) (any, error)

var coercers = map[string]coercer{
	"string": func(s string) (any, error) { return s, nil },
	"integer": func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
	"decimal": func(s string) (any, error) {
		return strconv.ParseFloat(s, 64)
	},
	"boolean": func(s string) (any, error) {
		switch strings.ToLower(s) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		}
		return nil, fmt.Errorf("not a boolean")
	},
	"date": func(s string) (any, error) {
		return record.ParseDate(s)
	},
	"year": func(s string) (any, error) {
		if len(s) != 4 {
			return nil, fmt.Errorf("want four digits")
		}
		return strconv.ParseInt(s, 10, 64)
	},
}

// IsType reports whether name is a type Typed can coerce to.
func IsType(name string) bool {
	_, ok := coercers[name]
	return ok
}

// Typed coerces every value to typ. The first value that does not parse
// fails the field with ErrCoercion.
func Typed(key, typ string, values []string) (record.Attributes, error) {
	coerce, ok := coercers[typ]
	if !ok {
		return nil, internalerr.Field(key, fmt.Errorf("type %q: %w", typ, internalerr.ErrInvalidConfig))
	}
	if len(values) == 0 {
		return record.Attributes{}, nil
	}
	out := make([]any, 0, len(values))
	for _, raw := range values {
		v, err := coerce(strings.TrimSpace(raw))
		if err != nil {
			return nil, internalerr.Field(key, fmt.Errorf("%q as %s: %w", raw, typ, internalerr.ErrCoercion))
		}
		out = append(out, v)
	}
	return record.Attributes{key: out}, nil
}

// SubfieldHeader is the column header that carries subfield sub of key.
func SubfieldHeader(key, sub string) string {
	return key + "_" + sub
}

// Subfields recombines the sub-columns of key into one Compound per
// occurrence index. Sub-columns that appear a different number of times
// leave no way to align them and fail with ErrMalformedRow.
func Subfields(key string, subfields []string, r row.Row) (record.Attributes, error) {
	columns := make([][]row.Cell, len(subfields))
	count, countFrom := 0, ""
	for i, sub := range subfields {
		header := SubfieldHeader(key, sub)
		columns[i] = row.Occurrences(header, r)
		n := len(columns[i])
		if n == 0 {
			continue
		}
		if count == 0 {
			count, countFrom = n, header
			continue
		}
		if n != count {
			return nil, &internalerr.FieldError{
				Field: key,
				Line:  r.Line,
				Err: fmt.Errorf("%s appears %d times but %s appears %d times: %w",
					header, n, countFrom, count, internalerr.ErrMalformedRow),
			}
		}
	}

	var out []any
	for occ := 0; occ < count; occ++ {
		var c record.Compound
		for i, sub := range subfields {
			if len(columns[i]) == 0 {
				continue
			}
			v := strings.TrimSpace(columns[i][occ].Value)
			if v == "" {
				continue
			}
			c = append(c, record.Part{Name: sub, Value: v})
		}
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return record.Attributes{}, nil
	}
	return record.Attributes{key: out}, nil
}
