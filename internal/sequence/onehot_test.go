package sequence

import (
	"bytes"
	"testing"

	"github.com/sbinet/npyio/npy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/inodb/regiontools/internal/anno"
)

func TestOneHot(t *testing.T) {
	enc, err := OneHot([]string{"ACgT", "NTAG"})
	require.NoError(t, err)

	rows, cols := enc.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 16, cols)
	assert.Equal(t, []float64{
		1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1,
	}, mat.Row(nil, 0, enc))
	assert.Equal(t, []float64{
		0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 1, 0,
	}, mat.Row(nil, 1, enc))
}

func TestOneHot_ShapeErrors(t *testing.T) {
	_, err := OneHot([]string{"ACGT", "ACG"})
	assert.ErrorIs(t, err, anno.ErrShape)

	_, err = OneHot(nil)
	assert.ErrorIs(t, err, anno.ErrShape)
}

func TestWriteOneHot(t *testing.T) {
	enc, err := OneHot([]string{"ACG", "TTN"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOneHot(&buf, enc, false))
	r, err := npy.NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, r.Header.Descr.Shape)
	var data []float64
	require.NoError(t, r.Read(&data))
	assert.Equal(t, enc.RawMatrix().Data, data)

	buf.Reset()
	require.NoError(t, WriteOneHot(&buf, enc, true))
	var flat mat.Dense
	require.NoError(t, npy.Read(&buf, &flat))
	assert.True(t, mat.Equal(enc, &flat))
}
