package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Row-level ingest failures
	ErrCoercion            = errors.New("type coercion failed")
	ErrMalformedRow        = errors.New("malformed row")
	ErrNoAccessPolicy      = errors.New("no access policy defined")
	ErrInvalidAccessPolicy = errors.New("invalid access policy")

	// Export failures
	ErrUnsupportedValue = errors.New("unsupported value type")
)

// FieldError locates a row-level failure at a field and source line.
// Line is 0 when the row carries no position.
type FieldError struct {
	Field string
	Line  int
	Err   error
}

func (e *FieldError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: field %q: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Field wraps err with a field name. A nil err stays nil.
func Field(field string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Field: field, Err: err}
}

// AtLine sets the line on any FieldError in err's chain, or wraps err
// in a FieldError without a field name.
func AtLine(line int, err error) error {
	if err == nil {
		return nil
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		if fe.Line == 0 {
			fe.Line = line
		}
		return err
	}
	return &FieldError{Line: line, Err: err}
}
