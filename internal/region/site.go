package region

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SiteType selects the single base reported for a region.
type SiteType int

const (
	// SiteTSS is start on the plus strand, end-1 on the minus strand.
	SiteTSS SiteType = iota
	// SiteCenter is floor((start+end)/2).
	SiteCenter
	// SiteMaxAbsSig is start + argmax(|track|) for a per-base track.
	SiteMaxAbsSig
)

// ParseSiteType parses "TSS", "center" or "MaxAbsSig".
func ParseSiteType(s string) (SiteType, error) {
	switch s {
	case "TSS":
		return SiteTSS, nil
	case "center":
		return SiteCenter, nil
	case "MaxAbsSig":
		return SiteMaxAbsSig, nil
	default:
		return 0, fmt.Errorf("unknown site type %q (TSS, center, MaxAbsSig)", s)
	}
}

func (s SiteType) String() string {
	switch s {
	case SiteTSS:
		return "TSS"
	case SiteCenter:
		return "center"
	case SiteMaxAbsSig:
		return "MaxAbsSig"
	default:
		return fmt.Sprintf("site(%d)", int(s))
	}
}

// SiteFromRegion returns the coordinate-derived site of r.
func SiteFromRegion(r Region, st SiteType) (int64, error) {
	switch st {
	case SiteTSS:
		switch r.strand {
		case StrandPlus:
			return r.Start, nil
		case StrandMinus:
			return r.End - 1, nil
		default:
			return 0, fmt.Errorf("%w: TSS of %s requires a strand", ErrFieldNotFound, r.ID())
		}
	case SiteCenter:
		return floorDiv(r.Start+r.End, 2), nil
	default:
		return 0, fmt.Errorf("site type %s is not derived from coordinates", st)
	}
}

// SiteFromTrack returns the track-derived site of r. The track is indexed
// from r.Start.
func SiteFromTrack(r Region, track []float64, st SiteType) (int64, error) {
	if st != SiteMaxAbsSig {
		return 0, fmt.Errorf("site type %s is not derived from a track", st)
	}
	if len(track) == 0 {
		return 0, fmt.Errorf("%w: empty track for %s", ErrShape, r.ID())
	}
	abs := make([]float64, len(track))
	for i, v := range track {
		abs[i] = math.Abs(v)
	}
	return r.Start + int64(floats.MaxIdx(abs)), nil
}

// AtSite returns a copy of r covering [site, site+1).
func (r Region) AtSite(site int64) Region {
	return r.WithCoords(site, site+1)
}

// Sites replaces every row by its coordinate-derived site.
func (t *Table) Sites(st SiteType) (*Table, error) {
	rows := make([]Region, len(t.rows))
	for i, r := range t.rows {
		site, err := SiteFromRegion(r, st)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = r.AtSite(site)
	}
	return &Table{schema: t.schema, rows: rows}, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
