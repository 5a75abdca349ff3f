// Package row models one line of tabular metadata and extracts the
// values of repeated columns from it.
package row

import "strings"

// Cell is a single header/value pair.
type Cell struct {
	Header string
	Value  string
}

// Row is an ordered sequence of cells. Headers may repeat: spreadsheets
// carry several "files" or "creator" columns side by side.
type Row struct {
	// Line is the 1-based source line, 0 when unknown.
	Line  int
	Cells []Cell
}

// New builds a row from parallel header and value slices. Values beyond
// the last header are dropped; missing trailing values are left out.
func New(line int, headers, values []string) Row {
	n := len(headers)
	if len(values) < n {
		n = len(values)
	}
	cells := make([]Cell, n)
	for i := 0; i < n; i++ {
		cells[i] = Cell{Header: headers[i], Value: values[i]}
	}
	return Row{Line: line, Cells: cells}
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.Cells) }

// Index returns the position of the first cell whose header matches, or -1.
func (r Row) Index(header string) int {
	for i, c := range r.Cells {
		if matches(c.Header, header) {
			return i
		}
	}
	return -1
}

// Field returns the value of the cell at position i if its header matches.
func (r Row) Field(header string, i int) (string, bool) {
	if i < 0 || i >= len(r.Cells) || !matches(r.Cells[i].Header, header) {
		return "", false
	}
	return r.Cells[i].Value, true
}

// ValuesFor returns every non-blank value under header, left to right,
// starting at the first matching column. Whitespace-only cells count as
// blank; values are returned untrimmed. A missing header yields nil.
func ValuesFor(header string, r Row) []string {
	start := r.Index(header)
	if start < 0 {
		return nil
	}
	var out []string
	for i := start; i < r.Len(); i++ {
		v, ok := r.Field(header, i)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Occurrences returns every cell under header including empty ones, so
// that sibling columns can be aligned by occurrence index.
func Occurrences(header string, r Row) []Cell {
	var out []Cell
	for _, c := range r.Cells {
		if matches(c.Header, header) {
			out = append(out, c)
		}
	}
	return out
}

// Headers spreadsheets hand us often carry stray whitespace.
func matches(cellHeader, header string) bool {
	return strings.TrimSpace(cellHeader) == strings.TrimSpace(header)
}
