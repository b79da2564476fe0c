package region

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned when a per-row argument does not match the row count.
	ErrShape = errors.New("shape mismatch")

	// ErrFieldNotFound is returned when a region lacks a field its schema does not declare.
	ErrFieldNotFound = errors.New("field not found")

	// ErrSchemaMismatch is returned when two tables with different schemas are combined.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// FormatError represents a malformed row in a region file.
type FormatError struct {
	Path    string
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("region format error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("region format error at %s:%d: %s", e.Path, e.Line, e.Message)
}

// InvalidRegionError is returned when a transform yields start >= end.
type InvalidRegionError struct {
	Chrom string
	Start int64
	End   int64
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region %s:%d-%d: start must be less than end", e.Chrom, e.Start, e.End)
}
