package crosswalk

import (
	"encoding/xml"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/folio/pkg/folio/index"
	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/record"
)

// Namespaces declared on format roots.
const (
	NamespaceDC      = "http://purl.org/dc/elements/1.1/"
	NamespaceDCTerms = "http://purl.org/dc/terms/"
	NamespaceEDM     = "http://www.europeana.eu/schemas/edm/"
	NamespaceXSI     = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceOAIDC   = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	NamespaceOAI     = "http://www.openarchives.org/OAI/2.0/"
)

// Config carries deployment settings the mappings depend on.
type Config struct {
	// HostName prefixes image paths, e.g. "alexandria.ucsb.edu".
	HostName string
}

// Builder constructs a Format for a deployment.
type Builder func(cfg Config) *Format

var (
	mu       sync.RWMutex
	builders = map[string]Builder{}
)

// Register adds a format builder under prefix. Registering a prefix twice
// panics.
func Register(prefix string, b Builder) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := builders[prefix]; dup {
		panic("crosswalk: duplicate format " + prefix)
	}
	builders[prefix] = b
}

// Formats builds every registered format, keyed by metadata prefix.
func Formats(cfg Config) map[string]*Format {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]*Format, len(builders))
	for prefix, b := range builders {
		out[prefix] = b(cfg)
	}
	return out
}

// Prefixes lists the registered metadata prefixes.
func Prefixes() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(builders))
	for prefix := range builders {
		out = append(out, prefix)
	}
	sort.Strings(out)
	return out
}

// Lookup builds the format registered under prefix.
func Lookup(prefix string, cfg Config) (*Format, error) {
	mu.RLock()
	b, ok := builders[prefix]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("metadata prefix %q: %w", prefix, internalerr.ErrNotFound)
	}
	return b(cfg), nil
}

func init() {
	Register("oai_cdl", OAICDL)
	Register("oai_dc", OAIDC)
}

// imageObjects turns image paths into absolute URLs on the configured host.
func imageObjects(cfg Config) Computed {
	return func(rec record.Export) ([]string, error) {
		paths, err := rec.Strings(index.ImageURLField)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			out = append(out, "https://"+cfg.HostName+p)
		}
		return out, nil
	}
}

// OAICDL is the Calisphere format.
func OAICDL(cfg Config) *Format {
	return &Format{
		Prefix:           "oai_cdl",
		Schema:           "https://alexandria.ucsb.edu/oai_cdl.xsd",
		Namespace:        NamespaceOAI,
		ElementNamespace: "cdl",
		Attrs: []xml.Attr{
			attr("xmlns:dc", NamespaceDC),
			attr("xmlns:dcterms", NamespaceDCTerms),
			attr("xmlns:edm", NamespaceEDM),
			attr("xmlns:xsi", NamespaceXSI),
			attr("xsi:schemaLocation", " https://alexandria.ucsb.edu/oai_cdl/ https://alexandria.ucsb.edu/oai_cdl.xsd "),
		},
		Vocabularies: []Vocabulary{
			{Prefix: "dc", Elements: []Element{
				{"contributor", Direct{"all_contributors_label_sim"}},
				{"creator", Direct{"creator_label_tesim"}},
				{"date", Direct{index.DateField}},
				{"description", Direct{"description_tesim", "note_label_tesim", "citation"}},
				{"format", Direct{"extent_ssm"}},
				{"identifier", Direct{"identifier_ssm"}},
				{"language", Direct{"language_label_ssm"}},
				{"publisher", Direct{"publisher_tesim"}},
				{"relation", Direct{"collection_label_ssim"}},
				{"rights", Direct{"copyright_status_label_tesim"}},
				{"subject", Direct{"lc_subject_label_tesim"}},
				{"title", Direct{"title_tesim"}},
			}},
			{Prefix: "dcterms", Elements: []Element{
				{"accessRights", Direct{"isGovernedBy_ssim"}},
				{"alternative", Direct{"alternative_tesim"}},
				{"isPartOf", Direct{"collection_label_ssim"}},
				{"rightsHolder", Direct{"rights_holder_label_tesim"}},
				{"spatial", Direct{"location_label_tesim"}},
				{"type", Direct{"work_type_label_tesim"}},
			}},
			{Prefix: "edm", Elements: []Element{
				{"isShownAt", Direct{"uri_ssm"}},
				{"hasType", Direct{"form_of_work_label_tesim"}},
				{"object", imageObjects(cfg)},
				{"rights", Direct{"license_tesim"}},
			}},
		},
	}
}

// OAIDC is unqualified Dublin Core with EDM links.
func OAIDC(cfg Config) *Format {
	return &Format{
		Prefix:           "oai_dc",
		Schema:           "http://www.openarchives.org/OAI/2.0/oai_dc.xsd",
		Namespace:        NamespaceOAIDC,
		ElementNamespace: "dc",
		Attrs: []xml.Attr{
			attr("xmlns:oai_dc", NamespaceOAIDC),
			attr("xmlns:dc", NamespaceDC),
			attr("xmlns:edm", NamespaceEDM),
			attr("xmlns:xsi", NamespaceXSI),
			attr("xsi:schemaLocation", NamespaceOAIDC+" http://www.openarchives.org/OAI/2.0/oai_dc.xsd"),
		},
		Vocabularies: []Vocabulary{
			{Prefix: "dc", Elements: []Element{
				{"title", Direct{"title_tesim"}},
				{"creator", Direct{"creator_label_tesim"}},
				{"subject", Direct{"lc_subject_label_tesim"}},
				{"description", Direct{"description_tesim", "note_label_tesim", "citation"}},
				{"publisher", Direct{"publisher_tesim"}},
				{"contributor", Direct{"all_contributors_label_sim"}},
				{"date", Direct{index.DateField}},
				{"type", Direct{"work_type_label_tesim"}},
				{"format", Direct{"extent_ssm"}},
				{"identifier", Direct{"identifier_ssm"}},
				{"language", Direct{"language_label_ssm"}},
				{"relation", Direct{"collection_label_ssim"}},
				{"coverage", Direct{"location_label_tesim", index.CoverageField}},
				{"rights", Direct{"copyright_status_label_tesim"}},
			}},
			{Prefix: "edm", Elements: []Element{
				{"isShownAt", Direct{"uri_ssm"}},
				{"object", imageObjects(cfg)},
				{"rights", Direct{"license_tesim"}},
			}},
		},
	}
}
