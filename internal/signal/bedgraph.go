package signal

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/step"
)

// Interval is one bedGraph record: a constant value over [Start, End).
type Interval struct {
	Chrom string
	Start int64
	End   int64
	Value float64
}

// BedGraphSource serves signal from bedGraph intervals held in one step
// vector per chromosome. bigWig data is decoded into the same intervals.
// Positions without data read as 0.
type BedGraphSource struct {
	vectors   map[string]*step.Vector
	intervals []Interval
}

// NewBedGraphSource builds a source from parsed intervals. Later intervals
// overwrite earlier ones where they overlap.
func NewBedGraphSource(intervals []Interval) (*BedGraphSource, error) {
	s := &BedGraphSource{
		vectors:   make(map[string]*step.Vector),
		intervals: intervals,
	}
	for _, iv := range intervals {
		if iv.Start < 0 || iv.End <= iv.Start {
			return nil, fmt.Errorf("%w: bedGraph interval %s:%d-%d", ErrRange, iv.Chrom, iv.Start, iv.End)
		}
		vec, ok := s.vectors[iv.Chrom]
		if !ok {
			var err error
			vec, err = step.New(int(iv.Start), int(iv.End), step.Float(0))
			if err != nil {
				return nil, fmt.Errorf("create step vector for %s: %w", iv.Chrom, err)
			}
			vec.Relaxed = true
			s.vectors[iv.Chrom] = vec
		}
		vec.SetRange(int(iv.Start), int(iv.End), step.Float(iv.Value))
	}
	return s, nil
}

// LoadBedGraph reads a bedGraph file. Gzipped files are detected by their
// magic bytes.
func LoadBedGraph(path string) (*BedGraphSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bedGraph file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	intervals, err := ReadBedGraph(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewBedGraphSource(intervals)
}

// ReadBedGraph parses bedGraph records. track, browser and # lines are
// skipped.
func ReadBedGraph(r io.Reader) ([]Interval, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var out []Interval
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") ||
			strings.HasPrefix(text, "track") || strings.HasPrefix(text, "browser") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: expected 4 columns, got %d", line, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid start %q", line, fields[1])
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid end %q", line, fields[2])
		}
		value, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q", line, fields[3])
		}
		out = append(out, Interval{Chrom: fields[0], Start: start, End: end, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan bedGraph: %w", err)
	}
	return out, nil
}

// Intervals returns the records the source was built from.
func (s *BedGraphSource) Intervals() []Interval {
	return s.intervals
}

// Chromosomes returns the chromosomes with data, sorted.
func (s *BedGraphSource) Chromosomes() []string {
	names := make([]string, 0, len(s.vectors))
	for name := range s.vectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum returns the total signal over [start, end).
func (s *BedGraphSource) Sum(chrom string, start, end int64) (float64, error) {
	if err := checkInterval(chrom, start, end); err != nil {
		return 0, err
	}
	var total float64
	err := s.do(chrom, start, end, func(from, to int64, v float64) {
		total += v * float64(to-from)
	})
	return total, err
}

// Values returns the per-base signal over [start, end).
func (s *BedGraphSource) Values(chrom string, start, end int64) ([]float64, error) {
	if err := checkInterval(chrom, start, end); err != nil {
		return nil, err
	}
	out := make([]float64, end-start)
	err := s.do(chrom, start, end, func(from, to int64, v float64) {
		for p := from; p < to; p++ {
			out[p-start] = v
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// do visits the steps overlapping [start, end), clipped to that range.
func (s *BedGraphSource) do(chrom string, start, end int64, fn func(from, to int64, v float64)) error {
	vec, ok := s.vectors[chrom]
	if !ok {
		return nil
	}
	lo := max(start, int64(vec.Start()))
	hi := min(end, int64(vec.End()))
	if lo >= hi {
		return nil
	}
	err := vec.DoRange(int(lo), int(hi), func(from, to int, e step.Equaler) {
		f, t := max(int64(from), lo), min(int64(to), hi)
		if v := float64(e.(step.Float)); v != 0 && f < t {
			fn(f, t, v)
		}
	})
	if err != nil {
		return fmt.Errorf("query %s:%d-%d: %w", chrom, start, end, err)
	}
	return nil
}
