package signal

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
)

const minusBedGraph = "chr1\t100\t102\t-4\nchr1\t102\t110\t-1\n"

// Rows: a minus strand region followed by a plus strand region.
const pairRegions = "chr1\t100\t110\tr1\t0\t-\n" +
	"chr1\t100\t110\tr2\t0\t+\n"

func pairedQuantifier(t *testing.T) *Paired {
	t.Helper()
	return NewPaired(readSource(t, plusBedGraph), readSource(t, minusBedGraph))
}

func pairTable(t *testing.T) *region.Table {
	t.Helper()
	tbl, err := region.Read(strings.NewReader(pairRegions), region.Bed6)
	require.NoError(t, err)
	return tbl
}

func TestParseQuantification(t *testing.T) {
	for _, q := range []Quantification{RawCount, RPK, FullTrack} {
		got, err := ParseQuantification(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, got)
	}
	_, err := ParseQuantification("mean")
	assert.Error(t, err)
}

func TestSingle_Count(t *testing.T) {
	q := NewSingle(readSource(t, plusBedGraph))
	r := region.NewBed6("chr1", 100, 110, "r", 0, region.StrandMinus)

	raw, err := q.Count(r, Options{Quantification: RawCount})
	require.NoError(t, err)
	assert.Equal(t, 15.0, raw.Stat)

	rpk, err := q.Count(r, Options{Quantification: RPK})
	require.NoError(t, err)
	assert.Equal(t, raw.Stat/float64(r.Len())*1000, rpk.Stat)

	track, err := q.Count(r, Options{Quantification: FullTrack, FlipMinus: true, NegateMinus: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}, track.Track)
}

func TestPaired_StrandSelection(t *testing.T) {
	q := pairedQuantifier(t)
	tbl := pairTable(t)

	minus, err := q.Count(tbl.At(0), Options{Quantification: RawCount})
	require.NoError(t, err)
	assert.Equal(t, -16.0, minus.Stat)

	plus, err := q.Count(tbl.At(1), Options{Quantification: RawCount})
	require.NoError(t, err)
	assert.Equal(t, 15.0, plus.Stat)

	override, err := q.Count(tbl.At(0), Options{Quantification: RawCount, OverrideStrand: region.StrandPlus})
	require.NoError(t, err)
	assert.Equal(t, 15.0, override.Stat)

	negated, err := q.Count(tbl.At(0), Options{Quantification: RawCount, NegateMinus: true})
	require.NoError(t, err)
	assert.Equal(t, 16.0, negated.Stat)
}

func TestPaired_StrandlessUsesPlus(t *testing.T) {
	q := pairedQuantifier(t)
	r := region.NewBed3("chr1", 100, 110)

	v, err := q.Count(r, Options{Quantification: RawCount})
	require.NoError(t, err)
	assert.Equal(t, 15.0, v.Stat)

	v, err = q.Count(r, Options{Quantification: RawCount, OverrideStrand: region.StrandMinus})
	require.NoError(t, err)
	assert.Equal(t, -16.0, v.Stat)
}

func TestPaired_Flip(t *testing.T) {
	q := pairedQuantifier(t)
	tbl := pairTable(t)

	for i, r := range tbl.All() {
		plain, err := q.Count(r, Options{Quantification: FullTrack})
		require.NoError(t, err)
		flipped, err := q.Count(r, Options{Quantification: FullTrack, FlipMinus: true})
		require.NoError(t, err)

		if r.Strand() == region.StrandMinus {
			want := slices.Clone(plain.Track)
			slices.Reverse(want)
			assert.Equal(t, want, flipped.Track, "row %d", i)
		} else {
			assert.Equal(t, plain.Track, flipped.Track, "row %d", i)
		}
	}
}

func TestPaired_NegateTrack(t *testing.T) {
	q := pairedQuantifier(t)
	tbl := pairTable(t)

	v, err := q.Count(tbl.At(0), Options{Quantification: FullTrack, NegateMinus: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 1, 1, 1, 1, 1, 1, 1, 1}, v.Track)
}

func TestCount_MinLen(t *testing.T) {
	q := NewSingle(readSource(t, plusBedGraph))
	r := region.NewBed3("chr1", 100, 105)

	_, err := q.Count(r, Options{Quantification: RawCount, MinLen: 6})
	assert.ErrorIs(t, err, ErrRange)

	_, err = q.Count(r, Options{Quantification: RawCount, MinLen: 5})
	assert.NoError(t, err)
}

func TestCounter_RPKExact(t *testing.T) {
	tbl, err := region.Read(strings.NewReader(
		"chr1\t100\t107\nchr1\t95\t121\nchr2\t0\t3\nchr1\t500\t501\n"), region.Bed3)
	require.NoError(t, err)

	c := NewCounter(NewSingle(readSource(t, plusBedGraph)), 2)
	raw, err := c.CountTable(tbl, Options{Quantification: RawCount})
	require.NoError(t, err)
	rpk, err := c.CountTable(tbl, Options{Quantification: RPK})
	require.NoError(t, err)

	for i, r := range tbl.All() {
		assert.Equal(t, raw[i].Stat/float64(r.Len())*1000, rpk[i].Stat, "row %d", i)
	}
	assert.Equal(t, []float64{9, 25, 1.5, 0}, Stats(raw))
}

func TestCounter_AnnotateFullTrack(t *testing.T) {
	tbl, err := region.Read(strings.NewReader("chr1\t100\t103\nchr1\t119\t121\nchr1\t108\t112\n"), region.Bed3)
	require.NoError(t, err)
	s := anno.NewStore(tbl)

	c := NewCounter(NewSingle(readSource(t, plusBedGraph)), 0)
	require.NoError(t, c.Annotate(s, "signal", Options{Quantification: FullTrack}))

	tracks, err := s.Track("signal")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 4}, tracks.Lengths())

	padded := PadTracks(tracks)
	assert.Equal(t, [][]float64{
		{1, 1, 1, 0},
		{0, 10, 0, 0},
		{2, 2, 0, 0},
	}, padded)
	for i, row := range padded {
		for j := tracks.Lengths()[i]; j < len(row); j++ {
			assert.Zero(t, row[j], "row %d col %d", i, j)
		}
	}
}

func TestCounter_AnnotateStat(t *testing.T) {
	tbl, err := region.Read(strings.NewReader("chr1\t100\t110\n"), region.Bed3)
	require.NoError(t, err)
	s := anno.NewStore(tbl)

	c := NewCounter(NewSingle(readSource(t, plusBedGraph)), 1)
	require.NoError(t, c.Annotate(s, "count", Options{Quantification: RawCount}))

	count, err := s.Stat("count")
	require.NoError(t, err)
	assert.Equal(t, []float64{15}, count)
}

func TestCounter_FirstErrorAborts(t *testing.T) {
	tbl, err := region.Read(strings.NewReader("chr1\t100\t110\nchr1\t100\t102\nchr1\t100\t101\n"), region.Bed3)
	require.NoError(t, err)

	c := NewCounter(NewSingle(readSource(t, plusBedGraph)), 3)
	_, err = c.CountTable(tbl, Options{Quantification: RawCount, MinLen: 3})
	require.ErrorIs(t, err, ErrRange)
	assert.Contains(t, err.Error(), "row 1")
}
