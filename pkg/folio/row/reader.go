package row

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader reads rows from CSV input whose first record is the header line.
type Reader struct {
	r       *csv.Reader
	headers []string
}

// NewReader reads the header line from r and returns a Reader positioned
// at the first data row.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	return &Reader{r: cr, headers: headers}, nil
}

// Headers returns the header line as read.
func (r *Reader) Headers() []string {
	return append([]string(nil), r.headers...)
}

// Next returns the next non-blank row, or io.EOF when input is exhausted.
func (r *Reader) Next() (Row, error) {
	for {
		values, err := r.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Row{}, io.EOF
			}
			return Row{}, fmt.Errorf("read csv: %w", err)
		}
		if blank(values) {
			continue
		}
		line, _ := r.r.FieldPos(0)
		return New(line, r.headers, values), nil
	}
}

// All reads every remaining row.
func (r *Reader) All() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// LoadFile reads all rows of a CSV file.
func LoadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rows, err := r.All()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
