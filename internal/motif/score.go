package motif

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

// EdgeFill selects the value written where no full motif window fits.
type EdgeFill int

const (
	// EdgeFillMin uses the minimum score of the valid windows.
	EdgeFillMin EdgeFill = iota
	// EdgeFillNaN marks edge positions as NaN.
	EdgeFillNaN
)

// ParseEdgeFill parses "min" or "nan".
func ParseEdgeFill(s string) (EdgeFill, error) {
	switch strings.ToLower(s) {
	case "min":
		return EdgeFillMin, nil
	case "nan":
		return EdgeFillNaN, nil
	default:
		return 0, fmt.Errorf("unknown edge fill %q (min, nan)", s)
	}
}

func (f EdgeFill) String() string {
	if f == EdgeFillNaN {
		return "nan"
	}
	return "min"
}

// UniformBackground returns equal frequencies over an alphabet of size n.
func UniformBackground(n int) []float64 {
	bg := make([]float64, n)
	for i := range bg {
		bg[i] = 1 / float64(n)
	}
	return bg
}

// PWMScore returns the log-odds score of window against m:
// the sum over positions of log10(pwm[pos][base]) - log10(bg[base]).
// A nil bg means a uniform background.
func PWMScore(window string, m *Model, bg []float64) (float64, error) {
	if len(window) != m.Width() {
		return 0, fmt.Errorf("%w: window has %d bases, motif %s has %d positions",
			ErrLengthMismatch, len(window), m.Name, m.Width())
	}
	if bg == nil {
		bg = UniformBackground(len(m.Alphabet))
	}

	var score float64
	for i := range len(window) {
		idx := m.Index(window[i])
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q in motif %s alphabet %q", ErrUnknownBase, window[i], m.Name, m.Alphabet)
		}
		score += math.Log10(m.PWM[i][idx]) - math.Log10(bg[idx])
	}
	return score, nil
}

// Scan slides m across seq and returns one score per base. The score of the
// window starting at i is written to i + floor(w/2). The first floor(w/2)
// and the last ceil(w/2)-1 positions are filled according to fill. A
// sequence shorter than the motif yields all NaN.
func Scan(seq string, m *Model, bg []float64, fill EdgeFill) ([]float64, error) {
	windows, err := windowScores(strings.ToUpper(seq), m, bg)
	if err != nil {
		return nil, err
	}
	return placeScores(windows, len(seq), m.Width(), fill), nil
}

// windowScores returns the score of every full window of seq, indexed by
// window start.
func windowScores(seq string, m *Model, bg []float64) ([]float64, error) {
	w := m.Width()
	if len(seq) < w || w == 0 {
		return nil, nil
	}
	out := make([]float64, len(seq)-w+1)
	for i := range out {
		s, err := PWMScore(seq[i:i+w], m, bg)
		if err != nil {
			return nil, fmt.Errorf("window at %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// placeScores lays window scores out over n bases, centered on their
// windows, and fills the edges.
func placeScores(windows []float64, n, w int, fill EdgeFill) []float64 {
	out := make([]float64, n)
	if len(windows) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	head := w / 2
	lo := math.Inf(1)
	for i, s := range windows {
		out[i+head] = s
		lo = math.Min(lo, s)
	}

	edge := lo
	if fill == EdgeFillNaN {
		edge = math.NaN()
	}
	tail := w - 1 - head
	for i := range head {
		out[i] = edge
	}
	for i := n - tail; i < n; i++ {
		out[i] = edge
	}
	return out
}

// ReverseComplement returns the reverse complement of a DNA sequence.
// IUPAC ambiguity codes are complemented; N maps to N.
func ReverseComplement(s string) string {
	sq := linear.NewSeq("", alphabet.BytesToLetters([]byte(s)), alphabet.DNAredundant)
	sq.RevComp()
	return string(alphabet.LettersToBytes(sq.Seq))
}

// scanMinus scores the reverse complement of seq. The score of each window
// is placed at the center of the forward window covering the same bases,
// so both strands share one layout.
func scanMinus(seq string, m *Model, bg []float64, fill EdgeFill) ([]float64, error) {
	windows, err := windowScores(ReverseComplement(strings.ToUpper(seq)), m, bg)
	if err != nil {
		return nil, err
	}
	slices.Reverse(windows)
	return placeScores(windows, len(seq), m.Width(), fill), nil
}
