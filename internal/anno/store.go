package anno

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/region"
)

// Store maps annotation names to per-region values aligned 1:1 with the
// rows of one region table. Loading never touches the table.
type Store struct {
	table  *region.Table
	annos  map[string]*Annotation
	logger *zap.Logger
}

// NewStore creates an empty store bound to t.
func NewStore(t *region.Table) *Store {
	return &Store{
		table:  t,
		annos:  make(map[string]*Annotation),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Table returns the region table the store is bound to.
func (s *Store) Table() *region.Table {
	return s.table
}

// LoadFromArray registers a stat annotation.
func (s *Store) LoadFromArray(name string, values []float64) error {
	if err := s.checkLen(name, len(values)); err != nil {
		return err
	}
	s.annos[name] = &Annotation{Kind: KindStat, Stat: append([]float64(nil), values...)}
	return nil
}

// LoadFromTrackList registers a track annotation. Rows may differ in length.
func (s *Store) LoadFromTrackList(name string, tracks [][]float64) error {
	if err := s.checkLen(name, len(tracks)); err != nil {
		return err
	}
	out := make(Tracks, len(tracks))
	for i, row := range tracks {
		out[i] = append([]float64(nil), row...)
	}
	s.annos[name] = &Annotation{Kind: KindTrack, Track: out}
	return nil
}

// LoadMask registers a mask annotation.
func (s *Store) LoadMask(name string, mask []bool) error {
	if err := s.checkLen(name, len(mask)); err != nil {
		return err
	}
	s.annos[name] = &Annotation{Kind: KindMask, Mask: append([]bool(nil), mask...)}
	return nil
}

// Get returns the named annotation.
func (s *Store) Get(name string) (*Annotation, error) {
	a, ok := s.annos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := s.checkLen(name, a.Len()); err != nil {
		return nil, err
	}
	return a, nil
}

// Stat returns the named stat annotation.
func (s *Store) Stat(name string) ([]float64, error) {
	a, err := s.getKind(name, KindStat)
	if err != nil {
		return nil, err
	}
	return a.Stat, nil
}

// Track returns the named track annotation.
func (s *Store) Track(name string) (Tracks, error) {
	a, err := s.getKind(name, KindTrack)
	if err != nil {
		return nil, err
	}
	return a.Track, nil
}

// Mask returns the named mask annotation.
func (s *Store) Mask(name string) ([]bool, error) {
	a, err := s.getKind(name, KindMask)
	if err != nil {
		return nil, err
	}
	return a.Mask, nil
}

// Has reports whether name is registered.
func (s *Store) Has(name string) bool {
	_, ok := s.annos[name]
	return ok
}

// Names returns the registered names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.annos))
	for name := range s.annos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter returns a store over the filtered table carrying every annotation
// filtered the same way.
func (s *Store) Filter(mask []bool) (*Store, error) {
	t, err := s.table.ApplyLogicalFilter(mask)
	if err != nil {
		return nil, err
	}

	idx := make([]int, 0, t.Len())
	for i, keep := range mask {
		if keep {
			idx = append(idx, i)
		}
	}

	out := NewStore(t)
	out.logger = s.logger
	for _, name := range s.Names() {
		a, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		out.annos[name] = a.pick(idx)
	}
	return out, nil
}

// FilterByMask filters the store with the named mask annotation.
func (s *Store) FilterByMask(name string) (*Store, error) {
	mask, err := s.Mask(name)
	if err != nil {
		return nil, err
	}
	return s.Filter(mask)
}

func (s *Store) getKind(name string, kind Kind) (*Annotation, error) {
	a, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != kind {
		return nil, fmt.Errorf("%w: %q is a %s, not a %s", ErrKind, name, a.Kind, kind)
	}
	return a, nil
}

func (s *Store) checkLen(name string, n int) error {
	if n != s.table.Len() {
		return fmt.Errorf("%w: annotation %q has %d entries, table has %d rows", ErrCardinality, name, n, s.table.Len())
	}
	return nil
}
