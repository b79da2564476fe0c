package anno

import (
	"fmt"

	"github.com/inodb/regiontools/internal/region"
)

// Merge combines the tables of a and b with region.Table.MergeSorted and
// realigns the named annotations of both stores into the merged row order.
// Every name must exist with the same kind in both stores.
func Merge(a, b *Store, names []string) (*Store, region.MergeIndex, error) {
	merged, idx, err := a.table.MergeSorted(b.table)
	if err != nil {
		return nil, region.MergeIndex{}, err
	}

	out := NewStore(merged)
	out.logger = a.logger
	for _, name := range names {
		left, err := a.Get(name)
		if err != nil {
			return nil, region.MergeIndex{}, fmt.Errorf("left input: %w", err)
		}
		right, err := b.Get(name)
		if err != nil {
			return nil, region.MergeIndex{}, fmt.Errorf("right input: %w", err)
		}
		if left.Kind != right.Kind {
			return nil, region.MergeIndex{}, fmt.Errorf("%w: %q is a %s on the left and a %s on the right", ErrKind, name, left.Kind, right.Kind)
		}
		out.annos[name] = realign(left, right, idx, merged.Len())
	}
	return out, idx, nil
}

// realign scatters both inputs into their merged positions.
func realign(left, right *Annotation, idx region.MergeIndex, n int) *Annotation {
	out := &Annotation{Kind: left.Kind}
	switch left.Kind {
	case KindStat:
		out.Stat = make([]float64, n)
		for i, pos := range idx.Left {
			out.Stat[pos] = left.Stat[i]
		}
		for i, pos := range idx.Right {
			out.Stat[pos] = right.Stat[i]
		}
	case KindTrack:
		out.Track = make(Tracks, n)
		for i, pos := range idx.Left {
			out.Track[pos] = left.Track[i]
		}
		for i, pos := range idx.Right {
			out.Track[pos] = right.Track[i]
		}
	case KindMask:
		out.Mask = make([]bool, n)
		for i, pos := range idx.Left {
			out.Mask[pos] = left.Mask[i]
		}
		for i, pos := range idx.Right {
			out.Mask[pos] = right.Mask[i]
		}
	}
	return out
}
