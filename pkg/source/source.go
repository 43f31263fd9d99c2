// Package source reads the raw survey dataset. A source is fetched exactly
// once per load and always yields a header record followed by data records.
package source

import (
	"context"
	"errors"
	"fmt"
)

// RawSource yields the raw tabular dataset as string records
type RawSource interface {
	// Name describes the source for logs and errors
	Name() string

	// Fetch reads the whole dataset; the first record is the header
	Fetch(ctx context.Context) ([][]string, error)
}

// ErrNoHeader is returned when the dataset has no header record
var ErrNoHeader = errors.New("dataset has no header record")

// normalizeRecords pads short records with empty cells so every record has the
// header's width. Records wider than the header are rejected.
func normalizeRecords(records [][]string) ([][]string, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrNoHeader
	}

	width := len(records[0])
	for i := 1; i < len(records); i++ {
		switch n := len(records[i]); {
		case n > width:
			return nil, fmt.Errorf("record %d has %d fields, header has %d", i, n, width)
		case n < width:
			padded := make([]string, width)
			copy(padded, records[i])
			records[i] = padded
		}
	}
	return records, nil
}
