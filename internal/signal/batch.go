package signal

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
	"github.com/inodb/regiontools/internal/workpool"
)

// Counter quantifies every row of a region table.
type Counter struct {
	q       Quantifier
	workers int
	logger  *zap.Logger
}

// NewCounter creates a counter using q. If workers is 0, runtime.NumCPU()
// workers are used.
func NewCounter(q Quantifier, workers int) *Counter {
	return &Counter{q: q, workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger for batch progress.
func (c *Counter) SetLogger(l *zap.Logger) {
	c.logger = l
}

// CountTable quantifies every row of t. Rows are evaluated in parallel;
// the first failing row in table order aborts the batch.
func (c *Counter) CountTable(t *region.Table, opts Options) ([]Value, error) {
	c.logger.Debug("quantifying regions",
		zap.Int("rows", t.Len()),
		zap.String("quantification", opts.Quantification.String()))

	values, err := workpool.Map(t.Len(), c.workers, func(i int) (Value, error) {
		v, err := c.q.Count(t.At(i), opts)
		if err != nil {
			return Value{}, fmt.Errorf("row %d: %w", i, err)
		}
		return v, nil
	})
	if err != nil {
		c.logger.Warn("quantification failed", zap.Error(err))
		return nil, err
	}
	return values, nil
}

// Annotate quantifies every row of the store's table and registers the
// result under name, as a stat for RawCount and RPK or a track for
// FullTrack.
func (c *Counter) Annotate(s *anno.Store, name string, opts Options) error {
	values, err := c.CountTable(s.Table(), opts)
	if err != nil {
		return err
	}
	if opts.Quantification == FullTrack {
		return s.LoadFromTrackList(name, Tracks(values))
	}
	return s.LoadFromArray(name, Stats(values))
}

// Stats extracts the scalar of every value.
func Stats(values []Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Stat
	}
	return out
}

// Tracks extracts the per-base vector of every value.
func Tracks(values []Value) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		out[i] = v.Track
	}
	return out
}

// PadTracks assembles tracks of differing lengths into rows zero-padded on
// the right to the longest track.
func PadTracks(tracks [][]float64) [][]float64 {
	width := 0
	for _, t := range tracks {
		width = max(width, len(t))
	}
	out := make([][]float64, len(tracks))
	for i, t := range tracks {
		row := make([]float64, width)
		copy(row, t)
		out[i] = row
	}
	return out
}
