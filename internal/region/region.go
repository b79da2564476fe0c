package region

import (
	"fmt"
	"strconv"
)

// Strand is the orientation of a region.
type Strand int8

// Strand values. StrandNone is reported by schemas without a strand column
// and for rows whose strand field is ".".
const (
	StrandNone  Strand = 0
	StrandPlus  Strand = 1
	StrandMinus Strand = -1
)

// ParseStrand parses "+", "-" or ".".
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return StrandPlus, nil
	case "-":
		return StrandMinus, nil
	case ".", "":
		return StrandNone, nil
	default:
		return StrandNone, fmt.Errorf("invalid strand %q", s)
	}
}

func (s Strand) String() string {
	switch s {
	case StrandPlus:
		return "+"
	case StrandMinus:
		return "-"
	default:
		return "."
	}
}

// Region is a half-open genomic interval [Start, End) with the extra fields
// of its schema. Extra fields are reachable only through accessors that fail
// with ErrFieldNotFound when the schema does not declare them.
type Region struct {
	Chrom string
	Start int64 // 0-based, inclusive
	End   int64 // exclusive

	schema     *Schema
	strand     Strand
	name       string
	score      float64
	noScore    bool // score column was "."
	geneSymbol string
	fwdTSS     int64
	revTSS     int64
}

// NewBed3 creates a bed3 region.
func NewBed3(chrom string, start, end int64) Region {
	return Region{Chrom: chrom, Start: start, End: end, schema: Bed3}
}

// NewBed6 creates a bed6 region.
func NewBed6(chrom string, start, end int64, name string, score float64, strand Strand) Region {
	return Region{
		Chrom: chrom, Start: start, End: end, schema: Bed6,
		name: name, score: score, strand: strand,
	}
}

// NewBed6Gene creates a bed6gene region.
func NewBed6Gene(chrom string, start, end int64, name string, score float64, strand Strand, geneSymbol string) Region {
	r := NewBed6(chrom, start, end, name, score, strand)
	r.schema = Bed6Gene
	r.geneSymbol = geneSymbol
	return r
}

// NewTREBed creates a TREbed region.
func NewTREBed(chrom string, start, end int64, name string, fwdTSS, revTSS int64) Region {
	return Region{
		Chrom: chrom, Start: start, End: end, schema: TREBed,
		name: name, fwdTSS: fwdTSS, revTSS: revTSS,
	}
}

// Schema returns the schema the region was built against.
func (r Region) Schema() *Schema {
	return r.schema
}

// Len returns End - Start.
func (r Region) Len() int64 {
	return r.End - r.Start
}

// Valid reports whether Start < End.
func (r Region) Valid() bool {
	return r.Start < r.End
}

// Strand returns the region strand, StrandNone for strandless schemas.
func (r Region) Strand() Strand {
	return r.strand
}

// HasStrand reports whether the schema declares a strand column.
func (r Region) HasStrand() bool {
	return r.schema != nil && r.schema.Has(ColStrand)
}

// Name returns the name field.
func (r Region) Name() (string, error) {
	if err := r.require(ColName); err != nil {
		return "", err
	}
	return r.name, nil
}

// Score returns the score field.
func (r Region) Score() (float64, error) {
	if err := r.require(ColScore); err != nil {
		return 0, err
	}
	return r.score, nil
}

// GeneSymbol returns the gene_symbol field.
func (r Region) GeneSymbol() (string, error) {
	if err := r.require(ColGeneSymbol); err != nil {
		return "", err
	}
	return r.geneSymbol, nil
}

// FwdTSS returns the fwdTSS field of a TREbed region.
func (r Region) FwdTSS() (int64, error) {
	if err := r.require(ColFwdTSS); err != nil {
		return 0, err
	}
	return r.fwdTSS, nil
}

// RevTSS returns the revTSS field of a TREbed region.
func (r Region) RevTSS() (int64, error) {
	if err := r.require(ColRevTSS); err != nil {
		return 0, err
	}
	return r.revTSS, nil
}

// ID returns "chrom:start-end".
func (r Region) ID() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// WithCoords returns a copy of r with new coordinates and all other fields kept.
func (r Region) WithCoords(start, end int64) Region {
	r.Start = start
	r.End = end
	return r
}

func (r Region) require(c Column) error {
	if r.schema == nil || !r.schema.Has(c) {
		schema := "<none>"
		if r.schema != nil {
			schema = r.schema.Name
		}
		return fmt.Errorf("%w: %s not in schema %s", ErrFieldNotFound, c, schema)
	}
	return nil
}

// fields renders the region in schema column order.
func (r Region) fields() []string {
	out := make([]string, len(r.schema.Columns))
	for i, c := range r.schema.Columns {
		switch c {
		case ColChrom:
			out[i] = r.Chrom
		case ColStart:
			out[i] = strconv.FormatInt(r.Start, 10)
		case ColEnd:
			out[i] = strconv.FormatInt(r.End, 10)
		case ColName:
			out[i] = r.name
		case ColScore:
			if r.noScore {
				out[i] = "."
			} else {
				out[i] = strconv.FormatFloat(r.score, 'f', -1, 64)
			}
		case ColStrand:
			out[i] = r.strand.String()
		case ColGeneSymbol:
			out[i] = r.geneSymbol
		case ColFwdTSS:
			out[i] = strconv.FormatInt(r.fwdTSS, 10)
		case ColRevTSS:
			out[i] = strconv.FormatInt(r.revTSS, 10)
		}
	}
	return out
}

// parseFields builds a region from one row of a schema-conformant file.
// The returned error message is wrapped into a FormatError by the caller.
func parseFields(schema *Schema, fields []string) (Region, error) {
	if len(fields) != len(schema.Columns) {
		return Region{}, fmt.Errorf("expected %d columns for %s, found %d", len(schema.Columns), schema.Name, len(fields))
	}

	r := Region{schema: schema}
	for i, c := range schema.Columns {
		v := fields[i]
		var err error
		switch c {
		case ColChrom:
			r.Chrom = v
		case ColStart:
			r.Start, err = strconv.ParseInt(v, 10, 64)
		case ColEnd:
			r.End, err = strconv.ParseInt(v, 10, 64)
		case ColName:
			r.name = v
		case ColScore:
			if v == "." {
				r.noScore = true
			} else {
				r.score, err = strconv.ParseFloat(v, 64)
			}
		case ColStrand:
			r.strand, err = ParseStrand(v)
		case ColGeneSymbol:
			r.geneSymbol = v
		case ColFwdTSS:
			r.fwdTSS, err = strconv.ParseInt(v, 10, 64)
		case ColRevTSS:
			r.revTSS, err = strconv.ParseInt(v, 10, 64)
		}
		if err != nil {
			return Region{}, fmt.Errorf("invalid %s %q", c, v)
		}
	}

	if r.Chrom == "" {
		return Region{}, fmt.Errorf("empty chrom")
	}
	if !r.Valid() {
		return Region{}, fmt.Errorf("start %d must be less than end %d", r.Start, r.End)
	}
	return r, nil
}
