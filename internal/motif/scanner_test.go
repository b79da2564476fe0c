package motif

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
)

// gata prefers GATA on the plus strand, so TATC scores on the minus strand.
func gata() *Model {
	return &Model{
		Name:     "gata",
		Alphabet: "ACGT",
		NumSites: 20,
		PWM: [][]float64{
			{0.05, 0.05, 0.85, 0.05},
			{0.85, 0.05, 0.05, 0.05},
			{0.05, 0.05, 0.05, 0.85},
			{0.85, 0.05, 0.05, 0.05},
		},
	}
}

var batch = []string{
	"CCGATACCTTATCAAG",
	"ttatcgggatagc",
	"ACGTNNACGATAT",
}

func TestParseStrand(t *testing.T) {
	for _, s := range []Strand{StrandPlus, StrandMinus, StrandBoth} {
		got, err := ParseStrand(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrand(".")
	assert.Error(t, err)
}

func TestEstimateBackground(t *testing.T) {
	bg, err := EstimateBackground([]string{"AAAC", "gtNN"}, "ACGTN")
	require.NoError(t, err)
	assert.Equal(t, []float64{3.0 / 8, 1.0 / 8, 1.0 / 8, 1.0 / 8, 2.0 / 8}, bg)

	bg, err = EstimateBackground([]string{"AAAC", "gtNN"}, "ACGT")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1.0 / 6, 1.0 / 6, 1.0 / 6}, bg, 1e-12)

	_, err = EstimateBackground([]string{"NNN"}, "ACGT")
	assert.Error(t, err)
}

func TestPrepare_BackgroundModes(t *testing.T) {
	seqs := []string{"AAAC"}

	fwd, err := Prepare(seqs, gata(), Options{Strand: StrandBoth, EstimateBackground: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75, 0.25, 0, 0}, fwd.Forward)
	assert.Equal(t, fwd.Forward, fwd.Reverse)

	rc, err := Prepare(seqs, gata(), Options{Strand: StrandBoth, EstimateBackground: true, BackgroundMode: BackgroundReverseComplement})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75, 0.25, 0, 0}, rc.Forward)
	assert.Equal(t, []float64{0, 0, 0.25, 0.75}, rc.Reverse)
}

func TestPrepare_UnknownBase(t *testing.T) {
	p, err := Prepare(batch, gata(), Options{Strand: StrandPlus, EstimateBackground: true})
	require.NoError(t, err)
	assert.Equal(t, "ACGTN", p.Model.Alphabet)
	assert.Len(t, p.Forward, 5)
	assert.InDelta(t, 2.0/42, p.Forward[4], 1e-12)
	// zero N column smoothed by the pseudocount
	assert.InDelta(t, 1.0/25, p.Model.PWM[0][4], 1e-12)

	// input model untouched
	assert.Equal(t, "ACGT", gata().Alphabet)
}

func TestPrepare_ModelBackground(t *testing.T) {
	m := gata()
	m.Background = []float64{0.3, 0.2, 0.2, 0.3}
	p, err := Prepare([]string{"GATA"}, m, Options{Strand: StrandPlus})
	require.NoError(t, err)
	assert.Equal(t, m.Background, p.Forward)

	m.Background = nil
	p, err = Prepare([]string{"GATA"}, m, Options{Strand: StrandPlus})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, p.Forward)

	// unknown bases only join the alphabet under background estimation
	p, err = Prepare([]string{"GANA"}, m, Options{Strand: StrandPlus})
	require.NoError(t, err)
	_, err = p.ScanSequence("GANA", StrandPlus, EdgeFillMin)
	assert.ErrorIs(t, err, ErrUnknownBase)
}

func TestScanSequence_BothIsPointwiseMax(t *testing.T) {
	for _, mode := range []BackgroundMode{BackgroundForward, BackgroundReverseComplement} {
		for _, fill := range []EdgeFill{EdgeFillMin, EdgeFillNaN} {
			opts := Options{Strand: StrandBoth, EstimateBackground: true, BackgroundMode: mode, EdgeFill: fill}
			p, err := Prepare(batch, gata(), opts)
			require.NoError(t, err)

			for _, seq := range batch {
				plus, err := p.ScanSequence(seq, StrandPlus, fill)
				require.NoError(t, err)
				minus, err := p.ScanSequence(seq, StrandMinus, fill)
				require.NoError(t, err)
				both, err := p.ScanSequence(seq, StrandBoth, fill)
				require.NoError(t, err)

				require.Len(t, both, len(seq))
				for i := range both {
					switch {
					case math.IsNaN(plus[i]) && math.IsNaN(minus[i]):
						assert.True(t, math.IsNaN(both[i]))
					case math.IsNaN(plus[i]):
						assert.Equal(t, minus[i], both[i])
					case math.IsNaN(minus[i]):
						assert.Equal(t, plus[i], both[i])
					default:
						assert.Equal(t, math.Max(plus[i], minus[i]), both[i], "%s position %d", seq, i)
					}
				}
			}
		}
	}
}

func TestScanSequence_MinusFindsReverseSite(t *testing.T) {
	p, err := Prepare([]string{"CCTATCCC"}, gata(), Options{Strand: StrandBoth})
	require.NoError(t, err)

	plus, err := p.ScanSequence("CCTATCCC", StrandPlus, EdgeFillMin)
	require.NoError(t, err)
	minus, err := p.ScanSequence("CCTATCCC", StrandMinus, EdgeFillMin)
	require.NoError(t, err)

	// TATC at 2..5 is GATA on the reverse strand
	best := slices.Max(minus)
	assert.Greater(t, best, slices.Max(plus))
	assert.Greater(t, best, 0.0)

	// centered on the forward window 2..5
	assert.Equal(t, 4, slices.Index(minus, best))
}

func TestScanner_ScanBatch(t *testing.T) {
	s := NewScanner(2)
	opts := Options{Strand: StrandBoth, EstimateBackground: true}

	tracks, err := s.ScanBatch(batch, gata(), opts)
	require.NoError(t, err)
	require.Len(t, tracks, len(batch))
	for i, seq := range batch {
		assert.Len(t, tracks[i], len(seq))
	}

	single := NewScanner(1)
	again, err := single.ScanBatch(batch, gata(), opts)
	require.NoError(t, err)
	assert.Equal(t, tracks, again)
}

func TestScanner_Annotate(t *testing.T) {
	tbl, err := region.Read(strings.NewReader("chr1\t0\t16\nchr1\t100\t113\nchr2\t5\t18\n"), region.Bed3)
	require.NoError(t, err)
	st := anno.NewStore(tbl)

	s := NewScanner(0)
	require.NoError(t, s.Annotate(st, "gata", batch, gata(), Options{Strand: StrandPlus, EstimateBackground: true}))

	tracks, err := st.Track("gata")
	require.NoError(t, err)
	assert.Equal(t, []int{16, 13, 13}, tracks.Lengths())

	err = s.Annotate(st, "short", batch[:2], gata(), Options{})
	assert.ErrorIs(t, err, anno.ErrCardinality)
}
