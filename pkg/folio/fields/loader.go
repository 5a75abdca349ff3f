package fields

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

//go:embed schemas/csv.yaml
var defaultCSV []byte

// schemaFile is the YAML shape of a field schema.
type schemaFile struct {
	Format string      `yaml:"format"`
	Fields []fieldNode `yaml:"fields"`
}

// fieldNode is either a bare key or a one-entry mapping from key to flags.
type fieldNode struct {
	spec FieldSpec
}

type fieldFlags struct {
	Typed       string   `yaml:"typed"`
	Transformer string   `yaml:"transformer"`
	Subfields   []string `yaml:"subfields"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *fieldNode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var key string
		if err := node.Decode(&key); err != nil {
			return err
		}
		f.spec = FieldSpec{Key: key, Kind: Plain}
		return nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: field entry must have exactly one key", node.Line)
		}
		var key string
		if err := node.Content[0].Decode(&key); err != nil {
			return err
		}
		var flags fieldFlags
		if err := node.Content[1].Decode(&flags); err != nil {
			return fmt.Errorf("line %d: field %q: %w", node.Line, key, err)
		}
		spec, err := flags.spec(key)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		f.spec = spec
		return nil

	default:
		return fmt.Errorf("line %d: expected field key or mapping, got %v", node.Line, node.Kind)
	}
}

// spec resolves the flags to a single kind. Setting more than one flag is
// a configuration error.
func (fl fieldFlags) spec(key string) (FieldSpec, error) {
	spec := FieldSpec{Key: key, Kind: Plain}
	set := 0
	if fl.Typed != "" {
		spec.Kind, spec.Type = Typed, fl.Typed
		set++
	}
	if fl.Transformer != "" {
		spec.Kind, spec.Transformer = Transformed, fl.Transformer
		set++
	}
	if fl.Subfields != nil {
		spec.Kind, spec.Subfields = Subfielded, fl.Subfields
		set++
	}
	if set > 1 {
		return FieldSpec{}, fmt.Errorf("field %q sets more than one of typed, transformer, subfields: %w", key, internalerr.ErrInvalidConfig)
	}
	return spec, nil
}

// Parse builds a registry from YAML schema data.
func Parse(data []byte) (*Registry, error) {
	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse field schema: %w: %w", internalerr.ErrInvalidConfig, err)
	}
	if sf.Format == "" {
		sf.Format = "csv"
	}
	specs := make([]FieldSpec, len(sf.Fields))
	for i, n := range sf.Fields {
		specs[i] = n.spec
	}
	return NewRegistry(sf.Format, specs)
}

// LoadFile reads and parses a schema file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field schema %s: %w", path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// DefaultCSV returns the built-in CSV schema.
func DefaultCSV() (*Registry, error) {
	return Parse(defaultCSV)
}
