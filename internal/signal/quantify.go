package signal

import (
	"fmt"
	"slices"

	"github.com/inodb/regiontools/internal/region"
)

// Quantification selects how signal over a region is summarized.
type Quantification int

const (
	// RawCount is the sum of per-base values over [start, end).
	RawCount Quantification = iota
	// RPK is RawCount / (end - start) * 1000.
	RPK
	// FullTrack is the per-base vector over [start, end).
	FullTrack
)

// ParseQuantification parses "raw_count", "RPK" or "full_track".
func ParseQuantification(s string) (Quantification, error) {
	switch s {
	case "raw_count":
		return RawCount, nil
	case "RPK":
		return RPK, nil
	case "full_track":
		return FullTrack, nil
	default:
		return 0, fmt.Errorf("unknown quantification %q (raw_count, RPK, full_track)", s)
	}
}

func (q Quantification) String() string {
	switch q {
	case RawCount:
		return "raw_count"
	case RPK:
		return "RPK"
	case FullTrack:
		return "full_track"
	default:
		return fmt.Sprintf("quantification(%d)", int(q))
	}
}

// Value is the result of quantifying one region: Stat for RawCount and
// RPK, Track for FullTrack.
type Value struct {
	Stat  float64
	Track []float64
}

// Options controls region quantification.
type Options struct {
	Quantification Quantification
	// MinLen rejects shorter regions with ErrRange. Values below 1 mean 1.
	MinLen int64
	// OverrideStrand replaces the region strand in paired mode when not
	// StrandNone.
	OverrideStrand region.Strand
	// FlipMinus reverses full tracks read from the minus source.
	FlipMinus bool
	// NegateMinus multiplies values read from the minus source by -1.
	NegateMinus bool
}

// Quantifier summarizes signal over a single region.
type Quantifier interface {
	Count(r region.Region, opts Options) (Value, error)
}

// Single reads one strand-agnostic source. Region strand is ignored.
type Single struct {
	src Source
}

// NewSingle creates a quantifier over one source.
func NewSingle(src Source) *Single {
	return &Single{src: src}
}

// Count quantifies r.
func (q *Single) Count(r region.Region, opts Options) (Value, error) {
	if err := checkLen(r, opts.MinLen); err != nil {
		return Value{}, err
	}
	return quantify(q.src, r, opts.Quantification, false, false)
}

// Paired reads separate plus and minus strand sources.
type Paired struct {
	plus  Source
	minus Source
}

// NewPaired creates a quantifier over plus and minus strand sources.
func NewPaired(plus, minus Source) *Paired {
	return &Paired{plus: plus, minus: minus}
}

// Strand resolves the strand used for r: the override if set, then the
// region's own strand. Strandless rows resolve to StrandNone.
func (o Options) Strand(r region.Region) region.Strand {
	if o.OverrideStrand != region.StrandNone {
		return o.OverrideStrand
	}
	return r.Strand()
}

// Count quantifies r from the source selected by its resolved strand.
// StrandNone reads the plus source.
func (q *Paired) Count(r region.Region, opts Options) (Value, error) {
	if err := checkLen(r, opts.MinLen); err != nil {
		return Value{}, err
	}
	if opts.Strand(r) == region.StrandMinus {
		return quantify(q.minus, r, opts.Quantification, opts.FlipMinus, opts.NegateMinus)
	}
	return quantify(q.plus, r, opts.Quantification, false, false)
}

func checkLen(r region.Region, minLen int64) error {
	minLen = max(minLen, 1)
	if r.Len() < minLen {
		return fmt.Errorf("%w: %s has length %d, minimum is %d", ErrRange, r.ID(), r.Len(), minLen)
	}
	return nil
}

func quantify(src Source, r region.Region, q Quantification, flip, negate bool) (Value, error) {
	sign := 1.0
	if negate {
		sign = -1
	}

	switch q {
	case RawCount, RPK:
		sum, err := src.Sum(r.Chrom, r.Start, r.End)
		if err != nil {
			return Value{}, fmt.Errorf("sum %s: %w", r.ID(), err)
		}
		sum *= sign
		if q == RPK {
			sum = sum / float64(r.Len()) * 1000
		}
		return Value{Stat: sum}, nil

	case FullTrack:
		vals, err := src.Values(r.Chrom, r.Start, r.End)
		if err != nil {
			return Value{}, fmt.Errorf("fetch %s: %w", r.ID(), err)
		}
		if int64(len(vals)) != r.Len() {
			return Value{}, fmt.Errorf("%w: source returned %d values for %s", ErrShape, len(vals), r.ID())
		}
		if negate {
			for i := range vals {
				vals[i] *= sign
			}
		}
		if flip {
			slices.Reverse(vals)
		}
		return Value{Track: vals}, nil
	}
	return Value{}, fmt.Errorf("unknown quantification %v", q)
}
