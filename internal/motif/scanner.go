package motif

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/workpool"
)

// Strand selects which strands of a sequence are scanned.
type Strand int

const (
	StrandPlus Strand = iota
	StrandMinus
	// StrandBoth is the pointwise maximum of the plus and minus scans.
	StrandBoth
)

// ParseStrand parses "+", "-" or "both".
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return StrandPlus, nil
	case "-":
		return StrandMinus, nil
	case "both":
		return StrandBoth, nil
	default:
		return 0, fmt.Errorf("unknown motif strand %q (+, -, both)", s)
	}
}

func (s Strand) String() string {
	switch s {
	case StrandPlus:
		return "+"
	case StrandMinus:
		return "-"
	default:
		return "both"
	}
}

// Options controls a batch scan.
type Options struct {
	Strand Strand
	// EstimateBackground derives letter frequencies from the batch instead
	// of the model background.
	EstimateBackground bool
	BackgroundMode     BackgroundMode
	EdgeFill           EdgeFill
}

// Prepared is a motif ready for scoring one batch of sequences.
type Prepared struct {
	Model *Model
	// Forward scores plus strand windows, Reverse minus strand windows.
	Forward []float64
	Reverse []float64
}

// Prepare resolves the model and backgrounds for seqs. With background
// estimation an N column is added when the batch holds unknown bases.
// Pseudocounts are applied last so the N column is smoothed as well.
func Prepare(seqs []string, m *Model, opts Options) (*Prepared, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	p := &Prepared{Model: m}
	if opts.EstimateBackground {
		if ContainsUnknownBase(seqs) {
			p.Model = p.Model.WithUnknownBase()
		}
		fwd, err := EstimateBackground(seqs, p.Model.Alphabet)
		if err != nil {
			return nil, err
		}
		p.Forward, p.Reverse = fwd, fwd
		if opts.BackgroundMode == BackgroundReverseComplement && opts.Strand != StrandPlus {
			rev, err := EstimateBackground(reverseComplementAll(seqs), p.Model.Alphabet)
			if err != nil {
				return nil, err
			}
			p.Reverse = rev
		}
	} else {
		bg := m.Background
		if bg == nil {
			bg = UniformBackground(len(m.Alphabet))
		}
		p.Forward, p.Reverse = bg, bg
	}

	p.Model = p.Model.Pseudocount()
	return p, nil
}

// ScanSequence scores seq on the requested strands. Minus strand scores
// are reported in forward coordinates.
func (p *Prepared) ScanSequence(seq string, strand Strand, fill EdgeFill) ([]float64, error) {
	switch strand {
	case StrandPlus:
		return Scan(seq, p.Model, p.Forward, fill)
	case StrandMinus:
		return scanMinus(seq, p.Model, p.Reverse, fill)
	}

	plus, err := Scan(seq, p.Model, p.Forward, fill)
	if err != nil {
		return nil, err
	}
	minus, err := scanMinus(seq, p.Model, p.Reverse, fill)
	if err != nil {
		return nil, err
	}
	for i, v := range minus {
		plus[i] = nanMax(plus[i], v)
	}
	return plus, nil
}

// nanMax is math.Max except that a NaN operand yields the other one.
func nanMax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}

// Scanner scores batches of sequences on a pool of workers.
type Scanner struct {
	workers int
	logger  *zap.Logger
}

// NewScanner creates a scanner. If workers is 0, runtime.NumCPU() workers
// are used.
func NewScanner(workers int) *Scanner {
	return &Scanner{workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger for batch progress.
func (s *Scanner) SetLogger(l *zap.Logger) {
	s.logger = l
}

// ScanBatch returns one score track per sequence.
func (s *Scanner) ScanBatch(seqs []string, m *Model, opts Options) ([][]float64, error) {
	p, err := Prepare(seqs, m, opts)
	if err != nil {
		return nil, fmt.Errorf("prepare motif %s: %w", m.Name, err)
	}
	s.logger.Debug("scanning motif",
		zap.String("motif", m.Name),
		zap.String("alphabet", p.Model.Alphabet),
		zap.Int("width", p.Model.Width()),
		zap.Int("sequences", len(seqs)),
		zap.Stringer("strand", opts.Strand),
		zap.Float64s("background", p.Forward))

	return workpool.Map(len(seqs), s.workers, func(i int) ([]float64, error) {
		out, err := p.ScanSequence(seqs[i], opts.Strand, opts.EdgeFill)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		return out, nil
	})
}

// Annotate scans one sequence per row of the store's table and registers
// the score tracks under name.
func (s *Scanner) Annotate(st *anno.Store, name string, seqs []string, m *Model, opts Options) error {
	if len(seqs) != st.Table().Len() {
		return fmt.Errorf("%w: %d sequences for %d regions", anno.ErrCardinality, len(seqs), st.Table().Len())
	}
	tracks, err := s.ScanBatch(seqs, m, opts)
	if err != nil {
		return err
	}
	return st.LoadFromTrackList(name, tracks)
}
