package region

import "fmt"

// InvalidPolicy selects what Pad does with a row whose padded interval is invalid.
type InvalidPolicy int

const (
	// PolicyRaise aborts with an *InvalidRegionError.
	PolicyRaise InvalidPolicy = iota
	// PolicyFallback keeps the original, unpadded row.
	PolicyFallback
	// PolicyDrop omits the row.
	PolicyDrop
)

// ParsePolicy parses "raise", "fallback" or "drop".
func ParsePolicy(s string) (InvalidPolicy, error) {
	switch s {
	case "raise":
		return PolicyRaise, nil
	case "fallback":
		return PolicyFallback, nil
	case "drop":
		return PolicyDrop, nil
	default:
		return 0, fmt.Errorf("unknown invalid-region policy %q (raise, fallback, drop)", s)
	}
}

func (p InvalidPolicy) String() string {
	switch p {
	case PolicyRaise:
		return "raise"
	case PolicyFallback:
		return "fallback"
	case PolicyDrop:
		return "drop"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Pad extends the region by upstream bases on its 5' side and downstream
// bases on its 3' side. Minus-strand regions swap the two sides unless
// ignoreStrand is set; strandless regions are padded as plus. Negative
// amounts shrink the region.
func (r Region) Pad(upstream, downstream int64, ignoreStrand bool) (Region, error) {
	start, end := r.Start-upstream, r.End+downstream
	if !ignoreStrand && r.strand == StrandMinus {
		start, end = r.Start-downstream, r.End+upstream
	}
	if start >= end {
		return Region{}, &InvalidRegionError{Chrom: r.Chrom, Start: start, End: end}
	}
	return r.WithCoords(start, end), nil
}

// Pad pads every row and resolves invalid results with policy.
func (t *Table) Pad(upstream, downstream int64, ignoreStrand bool, policy InvalidPolicy) (*Table, error) {
	rows := make([]Region, 0, len(t.rows))
	for _, r := range t.rows {
		padded, err := r.Pad(upstream, downstream, ignoreStrand)
		if err != nil {
			switch policy {
			case PolicyRaise:
				return nil, err
			case PolicyFallback:
				padded = r
			case PolicyDrop:
				continue
			default:
				return nil, fmt.Errorf("unknown invalid-region policy %v", policy)
			}
		}
		rows = append(rows, padded)
	}
	return &Table{schema: t.schema, rows: rows}, nil
}
