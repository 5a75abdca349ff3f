package fields

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

func TestParse(t *testing.T) {
	yaml := `
format: csv
fields:
  - title
  - issue_number:
      typed: integer
  - language:
      transformer: language
  - date_created:
      subfields: [start, finish]
  - note: {}
`
	reg, err := Parse([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, "csv", reg.Format())
	assert.Equal(t, []string{"title", "issue_number", "language", "date_created", "note"}, reg.Keys())

	spec, ok := reg.Lookup("issue_number")
	require.True(t, ok)
	assert.Equal(t, Typed, spec.Kind)
	assert.Equal(t, "integer", spec.Type)

	spec, _ = reg.Lookup("language")
	assert.Equal(t, Transformed, spec.Kind)
	assert.Equal(t, "language", spec.Transformer)

	spec, _ = reg.Lookup("date_created")
	assert.Equal(t, Subfielded, spec.Kind)
	assert.Equal(t, []string{"start", "finish"}, spec.Subfields)

	spec, _ = reg.Lookup("note")
	assert.Equal(t, Plain, spec.Kind)

	_, ok = reg.Lookup("creator")
	assert.False(t, ok)
}

func TestParseRejectsBadSchemas(t *testing.T) {
	cases := map[string]string{
		"two flags": `
fields:
  - language:
      transformer: language
      typed: string
`,
		"unknown transformer": `
fields:
  - location:
      transformer: geocode
`,
		"unknown type": `
fields:
  - price:
      typed: money
`,
		"empty subfields": `
fields:
  - date_created:
      subfields: []
`,
		"duplicate key": `
fields:
  - title
  - " title "
`,
		"two keys in entry": `
fields:
  - {title: {}, note: {}}
`,
		"sequence entry": `
fields:
  - [title]
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestUnknownTransformerIsConfigError(t *testing.T) {
	_, err := NewRegistry("csv", []FieldSpec{{Key: "location", Kind: Transformed, Transformer: "geocode"}})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
}

func TestDefaultCSV(t *testing.T) {
	reg, err := DefaultCSV()
	require.NoError(t, err)

	for _, key := range []string{"title", "access_policy", "parent_accession_number", "north_bound_latitude", "date_created"} {
		_, ok := reg.Lookup(key)
		assert.True(t, ok, key)
	}
	spec, _ := reg.Lookup("west_bound_longitude")
	assert.Equal(t, "longitude", spec.Transformer)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - title\n"), 0o644))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAllReturnsCopy(t *testing.T) {
	reg, err := NewRegistry("csv", []FieldSpec{{Key: "title"}})
	require.NoError(t, err)
	all := reg.All()
	all[0].Key = "changed"
	assert.Equal(t, []string{"title"}, reg.Keys())
}
