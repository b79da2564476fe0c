package anno

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/regiontools/internal/region"
)

func bed3Store(t *testing.T, rows ...region.Region) *Store {
	t.Helper()
	tbl, err := region.FromRegions(region.Bed3, rows)
	require.NoError(t, err)
	return NewStore(tbl)
}

func TestMerge_RealignsStats(t *testing.T) {
	a := bed3Store(t, region.NewBed3("chr2", 100, 110))
	b := bed3Store(t, region.NewBed3("chr1", 50, 60))
	require.NoError(t, a.LoadFromArray("stat", []float64{100}))
	require.NoError(t, b.LoadFromArray("stat", []float64{7}))

	merged, idx, err := Merge(a, b, []string{"stat"})
	require.NoError(t, err)

	assert.Equal(t, "chr1:50-60", merged.Table().At(0).ID())
	assert.Equal(t, "chr2:100-110", merged.Table().At(1).ID())
	assert.Equal(t, []int{1}, idx.Left)

	stat, err := merged.Stat("stat")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 100}, stat)
}

func TestMerge_RealignsTracks(t *testing.T) {
	a := bed3Store(t, region.NewBed3("chr1", 300, 303), region.NewBed3("chr1", 10, 12))
	b := bed3Store(t, region.NewBed3("chr1", 100, 101))
	require.NoError(t, a.LoadFromTrackList("sig", [][]float64{{3, 3, 3}, {1, 1}}))
	require.NoError(t, b.LoadFromTrackList("sig", [][]float64{{2}}))

	merged, _, err := Merge(a, b, []string{"sig"})
	require.NoError(t, err)

	sig, err := merged.Track("sig")
	require.NoError(t, err)
	assert.Equal(t, Tracks{{1, 1}, {2}, {3, 3, 3}}, sig)

	for i, r := range merged.Table().All() {
		assert.Equal(t, int(r.Len()), len(sig[i]))
	}
}

func TestMerge_Errors(t *testing.T) {
	a := bed3Store(t, region.NewBed3("chr1", 1, 2))
	b := bed3Store(t, region.NewBed3("chr1", 3, 4))
	require.NoError(t, a.LoadFromArray("x", []float64{1}))
	require.NoError(t, b.LoadMask("x", []bool{true}))

	_, _, err := Merge(a, b, []string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = Merge(a, b, []string{"x"})
	assert.ErrorIs(t, err, ErrKind)

	tbl, err := region.FromRegions(region.Bed6, []region.Region{region.NewBed6("chr1", 1, 2, "n", 0, region.StrandPlus)})
	require.NoError(t, err)
	_, _, err = Merge(a, NewStore(tbl), nil)
	assert.ErrorIs(t, err, region.ErrSchemaMismatch)
}

func TestMerge_WithoutAnnotations(t *testing.T) {
	a := bed3Store(t, region.NewBed3("chr1", 1, 2))
	b := bed3Store(t, region.NewBed3("chr1", 3, 4))
	require.NoError(t, a.LoadFromArray("x", []float64{1}))

	merged, _, err := Merge(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Table().Len())
	assert.Empty(t, merged.Names())
}
