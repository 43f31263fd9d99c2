// pkg/cleaner/errors.go
package cleaner

import (
	"fmt"
	"strings"
)

// DataLoadError reports a dataset that could not be read or parsed
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load dataset from %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// SchemaError reports required raw columns absent from the dataset
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValueParseError reports a single cell that failed conversion. Row is the
// 1-based data row, not counting the header.
type ValueParseError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("cannot parse %q in column %s at row %d: %v", e.Value, e.Column, e.Row, e.Err)
}

func (e *ValueParseError) Unwrap() error {
	return e.Err
}
