package anno

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio/npy"
	"github.com/sbinet/npyio/npz"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Array names inside .npz containers. arr_0 matches numpy.savez defaults.
const (
	npzValuesKey  = "arr_0"
	npzLengthsKey = "lengths"
)

// LoadFromFile deserializes a .npy or .npz file into an annotation of the
// given kind.
//
// Stats accept shapes (n) and (n, 1). Tracks are read from an (n, w) matrix;
// in .npz files an optional "lengths" array restores each row's original
// length, otherwise every row spans w.
func (s *Store) LoadFromFile(name, path string, kind Kind) error {
	var err error
	switch filepath.Ext(path) {
	case ".npy":
		err = s.loadNPY(name, path, kind)
	case ".npz":
		err = s.loadNPZ(name, path, kind)
	default:
		return fmt.Errorf("unsupported annotation file %q: expected .npy or .npz", path)
	}
	if err != nil {
		return fmt.Errorf("load annotation %q from %s: %w", name, path, err)
	}
	return nil
}

// Save persists the named annotation as .npy or .npz. Ragged tracks keep
// their row lengths only in .npz; a .npy file holds the zero-padded matrix.
func (s *Store) Save(name, path string) error {
	a, err := s.Get(name)
	if err != nil {
		return err
	}

	switch filepath.Ext(path) {
	case ".npy":
		err = s.saveNPY(name, path, a)
	case ".npz":
		err = saveNPZ(path, a)
	default:
		return fmt.Errorf("unsupported annotation file %q: expected .npy or .npz", path)
	}
	if err != nil {
		return fmt.Errorf("save annotation %q to %s: %w", name, path, err)
	}
	return nil
}

func (s *Store) loadNPY(name, path string, kind Kind) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := npy.NewReader(f)
	if err != nil {
		return fmt.Errorf("read npy header: %w", err)
	}
	shape := r.Header.Descr.Shape

	switch kind {
	case KindStat:
		if len(shape) == 2 && shape[1] != 1 {
			return fmt.Errorf("%w: stat array has shape %v", ErrShape, shape)
		}
		var v []float64
		if err := r.Read(&v); err != nil {
			return err
		}
		return s.LoadFromArray(name, v)

	case KindMask:
		var v []bool
		if err := r.Read(&v); err != nil {
			return err
		}
		return s.LoadMask(name, v)

	case KindTrack:
		if len(shape) != 2 {
			if len(shape) == 1 && shape[0] == 0 {
				return s.LoadFromTrackList(name, nil)
			}
			return fmt.Errorf("%w: track array has shape %v, want 2 dimensions", ErrShape, shape)
		}
		var m mat.Dense
		if err := r.Read(&m); err != nil {
			return err
		}
		tracks, err := TracksFromDense(&m, nil)
		if err != nil {
			return err
		}
		return s.LoadFromTrackList(name, tracks)
	}
	return fmt.Errorf("unknown annotation kind %v", kind)
}

func (s *Store) loadNPZ(name, path string, kind Kind) error {
	zr, err := npz.Open(path)
	if err != nil {
		return err
	}
	defer zr.Close()

	switch kind {
	case KindStat:
		var v []float64
		if err := zr.Read(npzValuesKey, &v); err != nil {
			return err
		}
		return s.LoadFromArray(name, v)

	case KindMask:
		var v []bool
		if err := zr.Read(npzValuesKey, &v); err != nil {
			return err
		}
		return s.LoadMask(name, v)

	case KindTrack:
		var lengths []int
		var raw []int64
		if err := zr.Read(npzLengthsKey, &raw); err == nil {
			lengths = make([]int, len(raw))
			for i, n := range raw {
				lengths[i] = int(n)
			}
		}

		var m mat.Dense
		if err := zr.Read(npzValuesKey, &m); err != nil {
			// all-empty tracks are stored as a zero-length vector
			if lengths != nil && allZero(lengths) {
				return s.LoadFromTrackList(name, make([][]float64, len(lengths)))
			}
			return err
		}
		tracks, err := TracksFromDense(&m, lengths)
		if err != nil {
			return err
		}
		return s.LoadFromTrackList(name, tracks)
	}
	return fmt.Errorf("unknown annotation kind %v", kind)
}

func (s *Store) saveNPY(name, path string, a *Annotation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var v any
	switch a.Kind {
	case KindStat:
		v = a.Stat
	case KindMask:
		v = a.Mask
	case KindTrack:
		if !a.Track.Uniform() {
			s.logger.Warn("ragged track saved as zero-padded npy; row lengths are not recorded",
				zap.String("annotation", name),
				zap.String("path", path))
		}
		v = trackPayload(a.Track)
	}

	if err := npy.Write(f, v); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func saveNPZ(path string, a *Annotation) error {
	zw, err := npz.Create(path)
	if err != nil {
		return err
	}

	switch a.Kind {
	case KindStat:
		err = zw.Write(npzValuesKey, a.Stat)
	case KindMask:
		err = zw.Write(npzValuesKey, a.Mask)
	case KindTrack:
		lengths := make([]int64, len(a.Track))
		for i, row := range a.Track {
			lengths[i] = int64(len(row))
		}
		if err = zw.Write(npzValuesKey, trackPayload(a.Track)); err == nil {
			err = zw.Write(npzLengthsKey, lengths)
		}
	}
	if err != nil {
		zw.Close()
		os.Remove(path)
		return err
	}
	return zw.Close()
}

// trackPayload returns the dense matrix, or an empty vector when the
// matrix would have a zero dimension.
func trackPayload(t Tracks) any {
	if m := t.Dense(); m != nil {
		return m
	}
	return []float64{}
}

func allZero(v []int) bool {
	for _, n := range v {
		if n != 0 {
			return false
		}
	}
	return true
}
