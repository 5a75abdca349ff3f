package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

// DetermineModel maps the spreadsheet "type" column to an object model
// name: "map set" and "map_set" both become "MapSet", "ETD" becomes "Etd".
func DetermineModel(typeValue string) (string, error) {
	words := strings.FieldsFunc(typeValue, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return "", fmt.Errorf("empty object type: %w", internalerr.ErrInvalidInput)
	}
	var b strings.Builder
	for _, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String(), nil
}
