// Package anno binds named per-region numeric annotations to a region table.
package anno

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrCardinality is returned when an annotation does not hold exactly
	// one entry per table row.
	ErrCardinality = errors.New("cardinality mismatch")

	// ErrNotFound is returned for an unknown annotation name.
	ErrNotFound = errors.New("annotation not found")

	// ErrKind is returned when an annotation is read as the wrong kind.
	ErrKind = errors.New("annotation kind mismatch")

	// ErrShape is returned when per-row tracks have incompatible lengths.
	ErrShape = errors.New("track shape mismatch")
)

// Kind is the variant of an annotation.
type Kind int

const (
	// KindStat is one scalar per region.
	KindStat Kind = iota
	// KindTrack is one variable-length vector per region.
	KindTrack
	// KindMask is one boolean per region.
	KindMask
)

// ParseKind parses "stat", "track" or "mask".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "stat":
		return KindStat, nil
	case "track":
		return KindTrack, nil
	case "mask":
		return KindMask, nil
	default:
		return 0, fmt.Errorf("unknown annotation kind %q (stat, track, mask)", s)
	}
}

func (k Kind) String() string {
	switch k {
	case KindStat:
		return "stat"
	case KindTrack:
		return "track"
	case KindMask:
		return "mask"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Tracks holds one vector per region. Each row keeps its own length; the
// zero-padded dense form exists only at the persistence boundary.
type Tracks [][]float64

// Lengths returns the length of every row.
func (t Tracks) Lengths() []int {
	out := make([]int, len(t))
	for i, row := range t {
		out[i] = len(row)
	}
	return out
}

// MaxLen returns the length of the longest row.
func (t Tracks) MaxLen() int {
	longest := 0
	for _, row := range t {
		longest = max(longest, len(row))
	}
	return longest
}

// Uniform reports whether every row has the same length.
func (t Tracks) Uniform() bool {
	for _, row := range t {
		if len(row) != len(t[0]) {
			return false
		}
	}
	return true
}

// Dense returns the tracks as an (n, MaxLen) matrix, right-padded with
// zeros. It returns nil when either dimension is zero.
func (t Tracks) Dense() *mat.Dense {
	width := t.MaxLen()
	if len(t) == 0 || width == 0 {
		return nil
	}
	m := mat.NewDense(len(t), width, nil)
	for i, row := range t {
		copy(m.RawRowView(i), row)
	}
	return m
}

// TracksFromDense rebuilds tracks from a zero-padded matrix. lengths gives
// the original length of every row; nil means every row spans the full width.
func TracksFromDense(m *mat.Dense, lengths []int) (Tracks, error) {
	rows, cols := m.Dims()
	if lengths != nil && len(lengths) != rows {
		return nil, fmt.Errorf("%w: %d lengths for %d rows", ErrCardinality, len(lengths), rows)
	}

	out := make(Tracks, rows)
	for i := range rows {
		n := cols
		if lengths != nil {
			n = lengths[i]
			if n < 0 || n > cols {
				return nil, fmt.Errorf("%w: row %d length %d outside [0, %d]", ErrShape, i, n, cols)
			}
		}
		row := make([]float64, n)
		copy(row, m.RawRowView(i)[:n])
		out[i] = row
	}
	return out, nil
}

// Annotation is a tagged per-region value: exactly one of Stat, Track or
// Mask is set, according to Kind.
type Annotation struct {
	Kind  Kind
	Stat  []float64
	Track Tracks
	Mask  []bool
}

// Len returns the number of rows the annotation covers.
func (a *Annotation) Len() int {
	switch a.Kind {
	case KindStat:
		return len(a.Stat)
	case KindTrack:
		return len(a.Track)
	default:
		return len(a.Mask)
	}
}

// pick returns a new annotation holding rows idx of a, in that order.
func (a *Annotation) pick(idx []int) *Annotation {
	out := &Annotation{Kind: a.Kind}
	switch a.Kind {
	case KindStat:
		out.Stat = make([]float64, len(idx))
		for i, j := range idx {
			out.Stat[i] = a.Stat[j]
		}
	case KindTrack:
		out.Track = make(Tracks, len(idx))
		for i, j := range idx {
			out.Track[i] = a.Track[j]
		}
	case KindMask:
		out.Mask = make([]bool, len(idx))
		for i, j := range idx {
			out.Mask[i] = a.Mask[j]
		}
	}
	return out
}
