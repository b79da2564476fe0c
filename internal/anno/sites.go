package anno

import (
	"fmt"
	"math"

	"github.com/inodb/regiontools/internal/region"
)

// SitesFromTrack replaces every row by the site derived from the named
// track annotation.
func (s *Store) SitesFromTrack(name string, st region.SiteType) (*region.Table, error) {
	tracks, err := s.Track(name)
	if err != nil {
		return nil, err
	}

	rows := make([]region.Region, s.table.Len())
	for i, r := range s.table.All() {
		site, err := region.SiteFromTrack(r, tracks[i], st)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = r.AtSite(site)
	}
	return s.table.WithRows(rows)
}

// SitesFromPairedTracks derives sites from separate plus and minus strand
// tracks, combined per base as max(|plus|, |minus|). Plus and minus tracks
// of a row must have equal length.
func (s *Store) SitesFromPairedTracks(plus, minus string, st region.SiteType) (*region.Table, error) {
	pl, err := s.Track(plus)
	if err != nil {
		return nil, err
	}
	mn, err := s.Track(minus)
	if err != nil {
		return nil, err
	}

	rows := make([]region.Region, s.table.Len())
	for i, r := range s.table.All() {
		if len(pl[i]) != len(mn[i]) {
			return nil, fmt.Errorf("%w: row %d plus track has %d values, minus track %d", ErrShape, i, len(pl[i]), len(mn[i]))
		}
		combined := make([]float64, len(pl[i]))
		for j := range combined {
			combined[j] = math.Max(math.Abs(pl[i][j]), math.Abs(mn[i][j]))
		}
		site, err := region.SiteFromTrack(r, combined, st)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = r.AtSite(site)
	}
	return s.table.WithRows(rows)
}

// TrackRangeMask marks rows whose track value at base lies strictly
// between lo and hi. A negative base counts from the end of each row.
// Rows too short for base fail with ErrShape.
func (s *Store) TrackRangeMask(name string, base int, lo, hi float64) ([]bool, error) {
	tracks, err := s.Track(name)
	if err != nil {
		return nil, err
	}

	mask := make([]bool, len(tracks))
	for i, row := range tracks {
		at := base
		if at < 0 {
			at += len(row)
		}
		if at < 0 || at >= len(row) {
			return nil, fmt.Errorf("%w: row %d has %d values, base %d requested", ErrShape, i, len(row), base)
		}
		v := row[at]
		mask[i] = v > lo && v < hi
	}
	return mask, nil
}
