package sequence

import (
	"fmt"
	"io"
	"reflect"

	"github.com/sbinet/npyio/npy"
	"gonum.org/v1/gonum/mat"

	"github.com/inodb/regiontools/internal/anno"
)

// OneHotAlphabet orders the four channels of a one-hot encoding.
const OneHotAlphabet = "ACGT"

var oneHotIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i, b := range []byte(OneHotAlphabet) {
		idx[b] = int8(i)
		idx[b+'a'-'A'] = int8(i)
	}
	return idx
}()

// OneHot encodes equal-length sequences as an n x 4L matrix. Row i holds
// sequence i base by base, four channels per base in ACGT order. N and
// other ambiguity codes encode as all zeros.
func OneHot(seqs []string) (*mat.Dense, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: no sequences to encode", anno.ErrShape)
	}
	width := len(seqs[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: empty sequence", anno.ErrShape)
	}

	enc := mat.NewDense(len(seqs), 4*width, nil)
	for i, seq := range seqs {
		if len(seq) != width {
			return nil, fmt.Errorf("%w: sequence %d has %d bases, expected %d", anno.ErrShape, i, len(seq), width)
		}
		for pos := range len(seq) {
			if c := oneHotIndex[seq[pos]]; c >= 0 {
				enc.Set(i, 4*pos+int(c), 1)
			}
		}
	}
	return enc, nil
}

// WriteOneHot writes an encoding from OneHot as npy. With flat the
// (n, 4L) matrix is written as is; otherwise the array has shape (n, L, 4).
func WriteOneHot(w io.Writer, enc *mat.Dense, flat bool) error {
	if flat {
		if err := npy.Write(w, enc); err != nil {
			return fmt.Errorf("write one-hot matrix: %w", err)
		}
		return nil
	}

	n, cols := enc.Dims()
	width := cols / 4
	arr := reflect.New(reflect.ArrayOf(n, reflect.ArrayOf(width, reflect.TypeFor[[4]float64]()))).Elem()
	for i := range n {
		row := arr.Index(i)
		for pos := range width {
			var base [4]float64
			for c := range base {
				base[c] = enc.At(i, 4*pos+c)
			}
			row.Index(pos).Set(reflect.ValueOf(base))
		}
	}
	if err := npy.Write(w, arr.Addr().Interface()); err != nil {
		return fmt.Errorf("write one-hot array: %w", err)
	}
	return nil
}
