package region

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_MergeSorted(t *testing.T) {
	a, err := FromRegions(Bed3, []Region{NewBed3("chr2", 100, 110)})
	require.NoError(t, err)
	b, err := FromRegions(Bed3, []Region{NewBed3("chr1", 50, 60)})
	require.NoError(t, err)

	merged, idx, err := a.MergeSorted(b)
	require.NoError(t, err)

	require.Equal(t, 2, merged.Len())
	assert.Equal(t, "chr1:50-60", merged.At(0).ID())
	assert.Equal(t, "chr2:100-110", merged.At(1).ID())
	assert.True(t, merged.IsSorted())
	assert.Equal(t, []int{1}, idx.Left)
	assert.Equal(t, []int{0}, idx.Right)
}

func TestTable_MergeSortedUnsortedInputs(t *testing.T) {
	a, err := Read(strings.NewReader("chr3\t5\t10\nchr1\t300\t400\nchr1\t10\t20\n"), Bed3)
	require.NoError(t, err)
	b, err := Read(strings.NewReader("chr2\t1\t2\nchr1\t200\t210\n"), Bed3)
	require.NoError(t, err)

	merged, idx, err := a.MergeSorted(b)
	require.NoError(t, err)

	want := []string{"chr1:10-20", "chr1:200-210", "chr1:300-400", "chr2:1-2", "chr3:5-10"}
	var got []string
	for _, r := range merged.All() {
		got = append(got, r.ID())
	}
	assert.Equal(t, want, got)

	for i, pos := range idx.Left {
		assert.Equal(t, a.At(i), merged.At(pos))
	}
	for j, pos := range idx.Right {
		assert.Equal(t, b.At(j), merged.At(pos))
	}
}

func TestTable_MergeSortedSchemaMismatch(t *testing.T) {
	a := NewTable(Bed3)
	b := NewTable(Bed6)
	_, _, err := a.MergeSorted(b)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTable_MergeSortedEmpty(t *testing.T) {
	a := readBed6(t)
	merged, idx, err := a.MergeSorted(a.CloneEmpty())
	require.NoError(t, err)
	assert.Equal(t, a.Sorted().Regions(), merged.Regions())
	assert.Len(t, idx.Left, 3)
	assert.Empty(t, idx.Right)
}
