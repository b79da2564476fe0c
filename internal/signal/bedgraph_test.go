package signal

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plusBedGraph = `track type=bedGraph name=pl
# comment
chr1	100	105	1
chr1	105	110	2
chr1	120	121	10
chr2	0	3	0.5
`

func readSource(t *testing.T, text string) *BedGraphSource {
	t.Helper()
	intervals, err := ReadBedGraph(strings.NewReader(text))
	require.NoError(t, err)
	src, err := NewBedGraphSource(intervals)
	require.NoError(t, err)
	return src
}

func TestReadBedGraph(t *testing.T) {
	intervals, err := ReadBedGraph(strings.NewReader(plusBedGraph))
	require.NoError(t, err)
	require.Len(t, intervals, 4)
	assert.Equal(t, Interval{Chrom: "chr1", Start: 100, End: 105, Value: 1}, intervals[0])
	assert.Equal(t, Interval{Chrom: "chr2", Start: 0, End: 3, Value: 0.5}, intervals[3])
}

func TestReadBedGraph_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "chr1\t1\t2\n"},
		{"bad start", "chr1\tx\t2\t1\n"},
		{"bad end", "chr1\t1\ty\t1\n"},
		{"bad value", "chr1\t1\t2\tz\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBedGraph(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNewBedGraphSource_InvalidInterval(t *testing.T) {
	_, err := NewBedGraphSource([]Interval{{Chrom: "chr1", Start: 5, End: 5, Value: 1}})
	assert.ErrorIs(t, err, ErrRange)
}

func TestBedGraphSource_Values(t *testing.T) {
	src := readSource(t, plusBedGraph)

	tests := []struct {
		name       string
		chrom      string
		start, end int64
		want       []float64
	}{
		{"inside", "chr1", 103, 107, []float64{1, 1, 2, 2}},
		{"left of data", "chr1", 98, 101, []float64{0, 0, 1}},
		{"gap", "chr1", 109, 112, []float64{2, 0, 0}},
		{"right of data", "chr1", 120, 123, []float64{10, 0, 0}},
		{"unknown chromosome", "chrX", 0, 2, []float64{0, 0}},
		{"empty", "chr1", 100, 100, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.Values(tt.chrom, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBedGraphSource_Sum(t *testing.T) {
	src := readSource(t, plusBedGraph)

	sum, err := src.Sum("chr1", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 5*1.0+5*2.0+10, sum)

	sum, err = src.Sum("chr1", 104, 106)
	require.NoError(t, err)
	assert.Equal(t, 3.0, sum)

	sum, err = src.Sum("chr2", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sum)

	_, err = src.Sum("chr1", 10, 5)
	assert.ErrorIs(t, err, ErrRange)
	_, err = src.Values("chr1", -1, 5)
	assert.ErrorIs(t, err, ErrRange)
}

func TestBedGraphSource_Overwrite(t *testing.T) {
	src := readSource(t, "chr1\t0\t10\t1\nchr1\t4\t6\t5\n")
	got, err := src.Values("chr1", 2, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 5, 5, 1, 1}, got)
}

func TestLoadBedGraph_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pl.bedGraph.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(plusBedGraph))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	src, err := LoadBedGraph(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr2"}, src.Chromosomes())
	assert.Len(t, src.Intervals(), 4)

	_, err = LoadBedGraph(filepath.Join(t.TempDir(), "missing.bedGraph"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
