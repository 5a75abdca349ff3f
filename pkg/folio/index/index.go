// Package index flattens attribute records into the indexed fields that
// export formats read.
package index

import (
	"net/url"
	"path"
	"strings"

	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/store"
)

// Index fields other packages read by name.
const (
	DateField     = "date_si"
	ImageURLField = "image_url_ssm"
	CoverageField = "coverage_tesim"
)

// fieldNames maps attribute keys to index field names. Keys missing here
// are not indexed.
var fieldNames = map[string]string{
	"accession_number": store.AccessionField,
	"admin_policy_id":  "isGovernedBy_ssim",
	"alternative":      "alternative_tesim",
	"citation":         "citation",
	"collection":       "collection_label_ssim",
	"contributor":      "all_contributors_label_sim",
	"copyright_status": "copyright_status_label_tesim",
	"coverage":         CoverageField,
	"creator":          "creator_label_tesim",
	"date_copyrighted": "date_copyrighted_ssm",
	"description":      "description_tesim",
	"extent":           "extent_ssm",
	"form_of_work":     "form_of_work_label_tesim",
	"identifier":       "identifier_ssm",
	"index_map_id":     "index_map_id_ssim",
	"issue_number":     "issue_number_ssm",
	"language":         "language_label_ssm",
	"lc_subject":       "lc_subject_label_tesim",
	"license":          "license_tesim",
	"location":         "location_label_tesim",
	"note":             "note_label_tesim",
	"parent_id":        "parent_id_ssim",
	"publisher":        "publisher_tesim",
	"rights_holder":    "rights_holder_label_tesim",
	"scale":            "scale_tesim",
	"title":            "title_tesim",
	"uri":              "uri_ssm",
	"work_type":        "work_type_label_tesim",
}

// dateKeys are searched in order for the sort date.
var dateKeys = []string{"date_created", "date_issued"}

// Document builds the index fields for the object id. Values that cannot
// be formatted are skipped.
func Document(id string, attrs record.Attributes) map[string][]string {
	doc := make(map[string][]string)
	for _, key := range attrs.Keys() {
		name, ok := fieldNames[key]
		if !ok {
			continue
		}
		vals := attrs.Strings(key)
		if name == store.AccessionField {
			vals = trimmed(vals)
		}
		if len(vals) > 0 {
			doc[name] = append(doc[name], vals...)
		}
	}
	if d, ok := sortDate(attrs); ok {
		doc[DateField] = []string{d}
	}
	if urls := ImageURLs(id, attrs.Strings("files")); len(urls) > 0 {
		doc[ImageURLField] = urls
	}
	return doc
}

// trimmed strips surrounding whitespace so stored accession numbers match
// the trimmed numbers the resolver looks up.
func trimmed(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// sortDate takes the label of the first date compound, falling back to its
// start.
func sortDate(attrs record.Attributes) (string, bool) {
	for _, key := range dateKeys {
		for _, v := range attrs[key] {
			c, ok := v.(record.Compound)
			if !ok {
				continue
			}
			if label, ok := c.Get("label"); ok {
				return label, true
			}
			if start, ok := c.Get("start"); ok {
				return start, true
			}
		}
	}
	return "", false
}

// ImageURLs returns the host-relative derivative path of each file, e.g.
// "/image-service/<id>/files/page1.tif/full/400,/0/default.jpg".
func ImageURLs(id string, files []string) []string {
	var out []string
	for _, f := range files {
		base := path.Base(strings.ReplaceAll(strings.TrimSpace(f), `\`, "/"))
		if base == "." || base == "/" {
			continue
		}
		out = append(out, "/image-service/"+url.PathEscape(id)+"/files/"+url.PathEscape(base)+"/full/400,/0/default.jpg")
	}
	return out
}
