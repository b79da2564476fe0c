package region

import (
	"fmt"
	"sort"
)

// MergeIndex maps the rows of each merge input to their merged position:
// Left[i] is the merged row of row i of the receiver, Right[j] the merged
// row of row j of the other table.
type MergeIndex struct {
	Left  []int
	Right []int
}

// MergeSorted returns the row-wise union of t and other ordered by
// (chrom, start), together with the realignment index of each input. The
// inputs may be in any order; on ties rows of t come first.
func (t *Table) MergeSorted(other *Table) (*Table, MergeIndex, error) {
	if t.schema != other.schema {
		return nil, MergeIndex{}, fmt.Errorf("%w: cannot merge %s with %s", ErrSchemaMismatch, t.schema.Name, other.schema.Name)
	}

	type source struct {
		row  Region
		side int
		idx  int
	}

	all := make([]source, 0, len(t.rows)+len(other.rows))
	for i, r := range t.rows {
		all = append(all, source{row: r, side: 0, idx: i})
	}
	for i, r := range other.rows {
		all = append(all, source{row: r, side: 1, idx: i})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return less(all[i].row, all[j].row)
	})

	idx := MergeIndex{Left: make([]int, len(t.rows)), Right: make([]int, len(other.rows))}
	rows := make([]Region, len(all))
	for pos, s := range all {
		rows[pos] = s.row
		if s.side == 0 {
			idx.Left[s.idx] = pos
		} else {
			idx.Right[s.idx] = pos
		}
	}

	return &Table{schema: t.schema, rows: rows, sorted: true}, idx, nil
}
