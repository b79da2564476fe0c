// Package signal quantifies genome-wide signal tracks over regions.
package signal

import (
	"errors"
	"fmt"
)

var (
	// ErrRange reports an interval shorter than the allowed minimum.
	ErrRange = errors.New("interval out of range")
	// ErrShape reports a mismatch between expected and observed vector shapes.
	ErrShape = errors.New("shape mismatch")
)

// Source is random-access, read-only per-base signal. Implementations must
// be safe for concurrent use.
type Source interface {
	// Sum returns the total signal over [start, end).
	Sum(chrom string, start, end int64) (float64, error)
	// Values returns the per-base signal over [start, end), one value
	// per base.
	Values(chrom string, start, end int64) ([]float64, error)
}

func checkInterval(chrom string, start, end int64) error {
	if start < 0 || end < start {
		return fmt.Errorf("%w: %s:%d-%d", ErrRange, chrom, start, end)
	}
	return nil
}

// Load reads a bigWig or bedGraph file. The format is chosen by the
// file's leading magic bytes.
func Load(path string) (*BedGraphSource, error) {
	bw, err := IsBigWig(path)
	if err != nil {
		return nil, err
	}
	if bw {
		return LoadBigWig(path)
	}
	return LoadBedGraph(path)
}
