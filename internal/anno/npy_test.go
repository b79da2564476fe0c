package anno

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio/npy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStore_SaveLoadStat(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".npy", ".npz"} {
		t.Run(ext, func(t *testing.T) {
			s := newStore(t)
			require.NoError(t, s.LoadFromArray("count", []float64{123, 0, 1877}))

			path := filepath.Join(dir, "count"+ext)
			require.NoError(t, s.Save("count", path))

			loaded := newStore(t)
			require.NoError(t, loaded.LoadFromFile("count", path, KindStat))
			got, err := loaded.Stat("count")
			require.NoError(t, err)
			assert.Equal(t, []float64{123, 0, 1877}, got)
		})
	}
}

func TestStore_LoadStatColumnVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.npy")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, npy.Write(f, mat.NewDense(3, 1, []float64{-123, 5, -216})))
	require.NoError(t, f.Close())

	s := newStore(t)
	require.NoError(t, s.LoadFromFile("count", path, KindStat))
	got, err := s.Stat("count")
	require.NoError(t, err)
	assert.Equal(t, []float64{-123, 5, -216}, got)
}

func TestStore_LoadFromFileCardinality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.npy")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, npy.Write(f, []float64{1, 2}))
	require.NoError(t, f.Close())

	s := newStore(t)
	err = s.LoadFromFile("count", path, KindStat)
	assert.ErrorIs(t, err, ErrCardinality)
}

func TestStore_SaveLoadUniformTrack(t *testing.T) {
	s := newStore(t)
	tracks := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	require.NoError(t, s.LoadFromTrackList("signal", tracks))

	path := filepath.Join(t.TempDir(), "signal.npy")
	require.NoError(t, s.Save("signal", path))

	loaded := newStore(t)
	require.NoError(t, loaded.LoadFromFile("signal", path, KindTrack))
	got, err := loaded.Track("signal")
	require.NoError(t, err)
	assert.Equal(t, Tracks{{1, 2}, {3, 4}, {5, 6}}, got)
}

func TestStore_SaveLoadRaggedTrack(t *testing.T) {
	dir := t.TempDir()
	s := newStore(t)
	tracks := [][]float64{{1, 2, 3}, {0, 4}, {5}}
	require.NoError(t, s.LoadFromTrackList("signal", tracks))

	t.Run("npz keeps lengths", func(t *testing.T) {
		path := filepath.Join(dir, "signal.npz")
		require.NoError(t, s.Save("signal", path))

		loaded := newStore(t)
		require.NoError(t, loaded.LoadFromFile("signal", path, KindTrack))
		got, err := loaded.Track("signal")
		require.NoError(t, err)
		assert.Equal(t, Tracks{{1, 2, 3}, {0, 4}, {5}}, got)
	})

	t.Run("npy is zero padded", func(t *testing.T) {
		path := filepath.Join(dir, "signal.npy")
		require.NoError(t, s.Save("signal", path))

		loaded := newStore(t)
		require.NoError(t, loaded.LoadFromFile("signal", path, KindTrack))
		got, err := loaded.Track("signal")
		require.NoError(t, err)
		assert.Equal(t, Tracks{{1, 2, 3}, {0, 4, 0}, {5, 0, 0}}, got)
	})
}

func TestStore_SaveLoadMask(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.LoadMask("keep", []bool{true, false, true}))

	path := filepath.Join(t.TempDir(), "keep.npy")
	require.NoError(t, s.Save("keep", path))

	loaded := newStore(t)
	require.NoError(t, loaded.LoadFromFile("keep", path, KindMask))
	got, err := loaded.Mask("keep")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, got)
}

func TestStore_SaveErrors(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.LoadFromArray("count", []float64{1, 2, 3}))

	err := s.Save("missing", filepath.Join(t.TempDir(), "x.npy"))
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Save("count", filepath.Join(t.TempDir(), "x.txt"))
	assert.Error(t, err)

	err = s.LoadFromFile("count", filepath.Join(t.TempDir(), "x.csv"), KindStat)
	assert.Error(t, err)
}
