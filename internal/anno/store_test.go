package anno

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/regiontools/internal/region"
)

const threeGenesBed6 = "chr14\t75278325\t75279326\tgene1\t0\t+\n" +
	"chr17\t45894026\t45895027\tgene2\t0\t-\n" +
	"chr1\t1000\t2001\tgene3\t0\t+\n"

func newStore(t *testing.T) *Store {
	t.Helper()
	tbl, err := region.Read(strings.NewReader(threeGenesBed6), region.Bed6)
	require.NoError(t, err)
	return NewStore(tbl)
}

func TestStore_LoadFromArray(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.LoadFromArray("count", []float64{1, 2, 3}))
	got, err := s.Stat("count")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)

	err = s.LoadFromArray("short", []float64{1, 2})
	assert.ErrorIs(t, err, ErrCardinality)
	assert.False(t, s.Has("short"))

	err = s.LoadFromArray("long", []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrCardinality)
}

func TestStore_LoadCopiesInput(t *testing.T) {
	s := newStore(t)
	values := []float64{1, 2, 3}
	require.NoError(t, s.LoadFromArray("count", values))
	values[0] = 100

	got, err := s.Stat("count")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got[0])
}

func TestStore_LoadFromTrackList(t *testing.T) {
	s := newStore(t)

	tracks := [][]float64{{1, 2, 3}, {4}, {}}
	require.NoError(t, s.LoadFromTrackList("signal", tracks))

	got, err := s.Track("signal")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0}, got.Lengths())
	assert.Equal(t, 3, got.MaxLen())
	assert.False(t, got.Uniform())

	err = s.LoadFromTrackList("bad", [][]float64{{1}})
	assert.ErrorIs(t, err, ErrCardinality)
}

func TestStore_GetErrors(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.LoadFromArray("count", []float64{1, 2, 3}))

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Track("count")
	assert.ErrorIs(t, err, ErrKind)

	_, err = s.Mask("count")
	assert.ErrorIs(t, err, ErrKind)

	a, err := s.Get("count")
	require.NoError(t, err)
	assert.Equal(t, KindStat, a.Kind)
	assert.Equal(t, 3, a.Len())
}

func TestStore_Names(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.LoadFromArray("b", []float64{1, 2, 3}))
	require.NoError(t, s.LoadMask("a", []bool{true, false, true}))
	assert.Equal(t, []string{"a", "b"}, s.Names())
}

func TestStore_Filter(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.LoadFromArray("count", []float64{10, 20, 30}))
	require.NoError(t, s.LoadFromTrackList("signal", [][]float64{{1}, {2, 2}, {3, 3, 3}}))
	require.NoError(t, s.LoadMask("keep", []bool{false, true, true}))

	out, err := s.FilterByMask("keep")
	require.NoError(t, err)

	assert.Equal(t, 2, out.Table().Len())
	assert.Equal(t, "chr17", out.Table().At(0).Chrom)

	count, err := out.Stat("count")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30}, count)

	signal, err := out.Track("signal")
	require.NoError(t, err)
	assert.Equal(t, Tracks{{2, 2}, {3, 3, 3}}, signal)

	// the source store is unchanged
	assert.Equal(t, 3, s.Table().Len())

	_, err = s.Filter([]bool{true})
	assert.ErrorIs(t, err, region.ErrShape)
}

func TestTracks_DenseRoundTrip(t *testing.T) {
	tracks := Tracks{{1, 2, 3}, {4}, {5, 6}}

	m := tracks.Dense()
	require.NotNil(t, m)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{4, 0, 0}, m.RawRowView(1))

	back, err := TracksFromDense(m, tracks.Lengths())
	require.NoError(t, err)
	assert.Equal(t, tracks, back)

	full, err := TracksFromDense(m, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 0}, full[2])

	_, err = TracksFromDense(m, []int{1, 2})
	assert.ErrorIs(t, err, ErrCardinality)
	_, err = TracksFromDense(m, []int{1, 2, 4})
	assert.ErrorIs(t, err, ErrShape)

	assert.Nil(t, Tracks{}.Dense())
	assert.Nil(t, Tracks{{}, {}}.Dense())
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindStat, KindTrack, KindMask} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("array")
	assert.Error(t, err)
}
