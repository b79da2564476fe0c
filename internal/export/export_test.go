package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
	"github.com/inodb/regiontools/internal/sequence"
)

const geneRegions = "chr14\t75278325\t75279326\tFOS\t0\t+\tFOS\n" +
	"chr17\t45894026\t45895027\tMAPT\t0\t-\tMAPT\n" +
	"chrUn_1\t1000\t2001\tX\t0\t+\tXYZ\n"

func geneStore(t *testing.T) *anno.Store {
	t.Helper()
	tbl, err := region.Read(strings.NewReader(geneRegions), region.Bed6Gene)
	require.NoError(t, err)
	s := anno.NewStore(tbl)
	require.NoError(t, s.LoadFromArray("ctrl", []float64{1.5, 0, 20}))
	require.NoError(t, s.LoadFromArray("treat", []float64{3, 4, 5}))
	return s
}

func TestParseIDType(t *testing.T) {
	got, err := ParseIDType("gene_symbol")
	require.NoError(t, err)
	assert.Equal(t, IDGeneSymbol, got)
	_, err = ParseIDType("name")
	assert.Error(t, err)
}

func TestRegionIDs(t *testing.T) {
	s := geneStore(t)

	ids, err := RegionIDs(s.Table(), IDDefault)
	require.NoError(t, err)
	assert.Equal(t, "chr14:75278325-75279326", ids[0])

	ids, err = RegionIDs(s.Table(), IDGeneSymbol)
	require.NoError(t, err)
	assert.Equal(t, []string{"FOS", "MAPT", "XYZ"}, ids)

	bed3, err := region.Read(strings.NewReader("chr1\t1\t2\n"), region.Bed3)
	require.NoError(t, err)
	_, err = RegionIDs(bed3, IDGeneSymbol)
	assert.ErrorIs(t, err, region.ErrFieldNotFound)
}

func TestWriteCountTable(t *testing.T) {
	s := geneStore(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCountTable(&buf, s, []string{"treat", "ctrl"}, IDGeneSymbol))

	assert.True(t, strings.HasPrefix(buf.String(), ",treat,ctrl\nFOS,"), buf.String())

	df := dataframe.ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, df.Err)
	assert.Equal(t, []string{"treat", "ctrl"}, df.Names()[1:])
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, []string{"FOS", "MAPT", "XYZ"}, df.Col(df.Names()[0]).Records())
	assert.Equal(t, []float64{1.5, 0, 20}, df.Col("ctrl").Float())
	assert.Equal(t, []float64{3, 4, 5}, df.Col("treat").Float())
}

func TestCountTable_Errors(t *testing.T) {
	s := geneStore(t)
	require.NoError(t, s.LoadFromTrackList("track", [][]float64{{1}, {2}, {3}}))

	_, err := CountTable(s, []string{"missing"}, IDDefault)
	assert.ErrorIs(t, err, anno.ErrNotFound)

	_, err = CountTable(s, []string{"track"}, IDDefault)
	assert.ErrorIs(t, err, anno.ErrKind)

	_, err = CountTable(s, []string{"ctrl", "ctrl"}, IDDefault)
	assert.Error(t, err)
}

func TestWriteFASTA(t *testing.T) {
	genome, err := sequence.ReadFASTA(strings.NewReader(">chr1\n" + strings.Repeat("ACGT", 40) + "\n>chr2\nNNNNGGGG\n"))
	require.NoError(t, err)
	tbl, err := region.Read(strings.NewReader("chr2\t2\t6\nchr1\t0\t130\n"), region.Bed3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, tbl, genome))
	assert.True(t, strings.HasPrefix(buf.String(), ">chr2:2-6\n"))

	back, err := sequence.ReadFASTA(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"chr2:2-6", "chr1:0-130"}, back.Chromosomes())

	got, err := back.FetchSequence("chr1:0-130", 0, 130)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ACGT", 40)[:130], got)

	missing, err := region.Read(strings.NewReader("chr3\t0\t1\n"), region.Bed3)
	require.NoError(t, err)
	assert.ErrorIs(t, WriteFASTA(&bytes.Buffer{}, missing, genome), sequence.ErrUnknownChrom)
}

func TestFilterChroms(t *testing.T) {
	sizes, err := ReadChromSizes(strings.NewReader("chr14\t107043718\nchr17\t83257441\n\n"))
	require.NoError(t, err)
	assert.Equal(t, ChromSizes{"chr14": 107043718, "chr17": 83257441}, sizes)

	s := geneStore(t)
	out, err := FilterChroms(s.Table(), sizes)
	require.NoError(t, err)
	assert.Equal(t, []string{"chr14", "chr17"}, out.ChromNames())

	_, err = ReadChromSizes(strings.NewReader("chr1\tbig\n"))
	assert.Error(t, err)
}
