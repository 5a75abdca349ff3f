package transform

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/record"
)

// Func is a named transformer.
type Func func(key string, values []string) (record.Attributes, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Func{}
)

// Register makes fn available to field schemas under name.
// Registering the same name twice panics.
func Register(name string, fn Func) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("transform: Register called twice for " + name)
	}
	registry[name] = fn
}

// Lookup returns the transformer registered under name.
func Lookup(name string) (Func, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	return fn, ok
}

// Names lists the registered transformers in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply runs the transformer registered under name. An unknown name is a
// configuration error, never a silent skip.
func Apply(name, key string, values []string) (record.Attributes, error) {
	fn, ok := Lookup(name)
	if !ok {
		return nil, internalerr.Field(key, fmt.Errorf("transformer %q: %w", name, internalerr.ErrInvalidConfig))
	}
	if len(values) == 0 {
		return record.Attributes{}, nil
	}
	return fn(key, values)
}

func init() {
	Register("language", Language)
	Register("latitude", Latitude)
	Register("longitude", Longitude)
	Register("split_pipe", SplitPipe)
}

// LanguageVocabulary is the ISO 639-2 authority that language codes
// resolve into.
const LanguageVocabulary = "http://id.loc.gov/vocabulary/iso639-2/"

var languageCode = regexp.MustCompile(`^[a-z]{3}$`)

// Language maps ISO 639-2 codes to vocabulary URIs. Values that already
// are vocabulary URIs pass through.
func Language(key string, values []string) (record.Attributes, error) {
	out := make([]any, 0, len(values))
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if strings.HasPrefix(v, LanguageVocabulary) {
			out = append(out, v)
			continue
		}
		code := strings.ToLower(v)
		if !languageCode.MatchString(code) {
			return nil, internalerr.Field(key, fmt.Errorf("%q is not an ISO 639-2 code: %w", raw, internalerr.ErrCoercion))
		}
		out = append(out, LanguageVocabulary+code)
	}
	return record.Attributes{key: out}, nil
}

// Latitude checks each value is decimal degrees within ±90.
func Latitude(key string, values []string) (record.Attributes, error) {
	return degrees(key, values, 90)
}

// Longitude checks each value is decimal degrees within ±180.
func Longitude(key string, values []string) (record.Attributes, error) {
	return degrees(key, values, 180)
}

var decimalDegrees = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseDegrees parses plain decimal notation such as "-69.856". Exponents,
// hex floats, NaN and infinities are rejected.
func ParseDegrees(s string) (float64, error) {
	if !decimalDegrees.MatchString(s) {
		return 0, fmt.Errorf("%q is not decimal degrees: %w", s, internalerr.ErrCoercion)
	}
	return strconv.ParseFloat(s, 64)
}

// degrees keeps the original text so the DCMI box repeats what was typed.
func degrees(key string, values []string, limit float64) (record.Attributes, error) {
	out := make([]any, 0, len(values))
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		f, err := ParseDegrees(v)
		if err != nil {
			return nil, internalerr.Field(key, err)
		}
		if f < -limit || f > limit {
			return nil, internalerr.Field(key, fmt.Errorf("%q outside ±%g: %w", raw, limit, internalerr.ErrCoercion))
		}
		out = append(out, v)
	}
	return record.Attributes{key: out}, nil
}

// SplitPipe splits pipe-delimited cells into separate values.
func SplitPipe(key string, values []string) (record.Attributes, error) {
	var out []any
	for _, raw := range values {
		for _, part := range strings.Split(raw, "|") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return record.Attributes{}, nil
	}
	return record.Attributes{key: out}, nil
}
