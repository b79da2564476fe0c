// Package region provides genomic region tables: schema-typed, ordered
// collections of half-open intervals with pure transforms (filter, pad,
// merge, site extraction).
package region

import (
	"fmt"
	"strings"
)

// Column identifies one field of a region file.
type Column int

// Columns known to the region schemas.
const (
	ColChrom Column = iota
	ColStart
	ColEnd
	ColName
	ColScore
	ColStrand
	ColGeneSymbol
	ColFwdTSS
	ColRevTSS
)

var columnNames = [...]string{
	ColChrom:      "chrom",
	ColStart:      "start",
	ColEnd:        "end",
	ColName:       "name",
	ColScore:      "score",
	ColStrand:     "strand",
	ColGeneSymbol: "gene_symbol",
	ColFwdTSS:     "fwdTSS",
	ColRevTSS:     "revTSS",
}

// String returns the column header name.
func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columnNames[c]
}

// Schema is a named, fixed, ordered list of columns.
type Schema struct {
	Name    string
	Columns []Column
}

// Predefined schemas.
var (
	Bed3     = &Schema{Name: "bed3", Columns: []Column{ColChrom, ColStart, ColEnd}}
	Bed6     = &Schema{Name: "bed6", Columns: []Column{ColChrom, ColStart, ColEnd, ColName, ColScore, ColStrand}}
	Bed6Gene = &Schema{Name: "bed6gene", Columns: []Column{ColChrom, ColStart, ColEnd, ColName, ColScore, ColStrand, ColGeneSymbol}}
	TREBed   = &Schema{Name: "TREbed", Columns: []Column{ColChrom, ColStart, ColEnd, ColName, ColFwdTSS, ColRevTSS}}
)

var schemas = []*Schema{Bed3, Bed6, Bed6Gene, TREBed}

// SchemaByName returns the predefined schema with the given name.
func SchemaByName(name string) (*Schema, error) {
	for _, s := range schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown region file type %q (supported: %s)", name, strings.Join(SchemaNames(), ", "))
}

// SchemaNames lists the names of the predefined schemas.
func SchemaNames() []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	return names
}

// Has reports whether the schema carries column c.
func (s *Schema) Has(c Column) bool {
	for _, col := range s.Columns {
		if col == c {
			return true
		}
	}
	return false
}

// ColumnNames returns the header names in column order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.String()
	}
	return names
}

func (s *Schema) String() string {
	return s.Name
}
