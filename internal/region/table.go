package region

import (
	"fmt"
	"iter"
	"sort"
)

// Table is an ordered collection of regions under one schema. Row order is
// the indexing basis for aligned annotations. Tables are never mutated once
// built: every transform returns a new Table.
type Table struct {
	schema *Schema
	rows   []Region
	sorted bool
}

// NewTable creates an empty table for the given schema.
func NewTable(schema *Schema) *Table {
	return &Table{schema: schema}
}

// FromRegions builds a table from rows in the given order. Every row must
// have been built against schema and satisfy Start < End.
func FromRegions(schema *Schema, rows []Region) (*Table, error) {
	t := &Table{schema: schema, rows: make([]Region, len(rows))}
	for i, r := range rows {
		if r.schema != schema {
			return nil, fmt.Errorf("row %d: %w: region schema %v, table schema %s", i, ErrSchemaMismatch, r.schema, schema.Name)
		}
		if !r.Valid() {
			return nil, &InvalidRegionError{Chrom: r.Chrom, Start: r.Start, End: r.End}
		}
		t.rows[i] = r
	}
	return t, nil
}

// Schema returns the table schema.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// At returns row i.
func (t *Table) At(i int) Region {
	return t.rows[i]
}

// All iterates rows in table order. The sequence can be ranged over any
// number of times.
func (t *Table) All() iter.Seq2[int, Region] {
	return func(yield func(int, Region) bool) {
		for i, r := range t.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Regions returns a copy of the rows.
func (t *Table) Regions() []Region {
	out := make([]Region, len(t.rows))
	copy(out, t.rows)
	return out
}

// ColumnNames returns the schema header names.
func (t *Table) ColumnNames() []string {
	return t.schema.ColumnNames()
}

// ChromNames returns the chromosome of every row, in row order.
func (t *Table) ChromNames() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Chrom
	}
	return out
}

// Chromosomes returns the distinct chromosomes in sorted order.
func (t *Table) Chromosomes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		if !seen[r.Chrom] {
			seen[r.Chrom] = true
			out = append(out, r.Chrom)
		}
	}
	sort.Strings(out)
	return out
}

// CloneEmpty returns a table with the same schema and no rows.
func (t *Table) CloneEmpty() *Table {
	return &Table{schema: t.schema}
}

// WithRows returns a table with the same schema and the given rows.
func (t *Table) WithRows(rows []Region) (*Table, error) {
	return FromRegions(t.schema, rows)
}

// IsSorted reports whether the table was produced in sorted mode.
func (t *Table) IsSorted() bool {
	return t.sorted
}

// Sorted returns a copy ordered by (chrom, start) ascending. Ties keep
// their relative order.
func (t *Table) Sorted() *Table {
	rows := t.Regions()
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
	return &Table{schema: t.schema, rows: rows, sorted: true}
}

// less orders regions by chromosome name (byte-wise) then start.
func less(a, b Region) bool {
	if a.Chrom != b.Chrom {
		return a.Chrom < b.Chrom
	}
	return a.Start < b.Start
}

// ApplyLogicalFilter keeps the rows where mask is true, preserving order.
func (t *Table) ApplyLogicalFilter(mask []bool) (*Table, error) {
	if len(mask) != len(t.rows) {
		return nil, fmt.Errorf("%w: mask length %d, table has %d rows", ErrShape, len(mask), len(t.rows))
	}

	rows := make([]Region, 0, len(t.rows))
	for i, keep := range mask {
		if keep {
			rows = append(rows, t.rows[i])
		}
	}
	return &Table{schema: t.schema, rows: rows, sorted: t.sorted}, nil
}
