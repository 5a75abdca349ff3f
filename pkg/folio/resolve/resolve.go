// Package resolve turns human-assigned accession numbers into internal
// object IDs.
package resolve

import (
	"context"
	"fmt"
	"strings"
)

// Finder looks objects up by accession number.
type Finder interface {
	FindByAccession(ctx context.Context, accessionNumber string) (string, bool, error)
}

// Resolver resolves accession numbers against a Finder.
type Resolver struct {
	finder Finder
}

// New creates a Resolver.
func New(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve looks up the first accession number only; multi-valued fields
// resolve by their primary value. A miss is found=false, not an error.
func (r *Resolver) Resolve(ctx context.Context, accessionNumbers []string) (string, bool, error) {
	if len(accessionNumbers) == 0 {
		return "", false, nil
	}
	number := strings.TrimSpace(accessionNumbers[0])
	if number == "" {
		return "", false, nil
	}
	id, found, err := r.finder.FindByAccession(ctx, number)
	if err != nil {
		return "", false, fmt.Errorf("resolve accession number %q: %w", number, err)
	}
	return id, found, nil
}
