// Package policy maps the access-policy shorthands used in spreadsheets to
// admin policy identifiers.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

// Admin policy identifiers.
const (
	PublicID       = "authorities/policies/public"
	UCSBID         = "authorities/policies/ucsb"
	DiscoveryID    = "authorities/policies/discovery"
	PublicCampusID = "authorities/policies/public_campus"
	RestrictedID   = "authorities/policies/restricted"
	UCSBCampusID   = "authorities/policies/ucsb_campus"
)

var shorthands = map[string]string{
	"public":        PublicID,
	"ucsb":          UCSBID,
	"discovery":     DiscoveryID,
	"public_campus": PublicCampusID,
	"restricted":    RestrictedID,
	"ucsb_campus":   UCSBCampusID,
}

// Resolve returns the policy ID for a shorthand. Surrounding whitespace is
// ignored; anything else must match exactly.
func Resolve(shorthand string) (string, error) {
	id, ok := shorthands[strings.TrimSpace(shorthand)]
	if !ok {
		return "", fmt.Errorf("%w: %q", internalerr.ErrInvalidAccessPolicy, shorthand)
	}
	return id, nil
}

// Shorthands lists the accepted shorthands in sorted order.
func Shorthands() []string {
	out := make([]string, 0, len(shorthands))
	for s := range shorthands {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
