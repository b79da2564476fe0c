// Package sequence serves genome sequence by coordinate.
package sequence

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/inodb/regiontools/internal/region"
)

var (
	// ErrUnknownChrom reports a chromosome absent from the genome.
	ErrUnknownChrom = errors.New("unknown chromosome")
	// ErrRange reports coordinates outside a chromosome.
	ErrRange = errors.New("coordinates out of range")
)

// Source is random-access, read-only genome sequence. Implementations must
// be safe for concurrent use.
type Source interface {
	// FetchSequence returns the upper-case bases of [start, end).
	FetchSequence(chrom string, start, end int64) (string, error)
}

// FASTASource holds a whole genome in memory, keyed by record ID.
type FASTASource struct {
	seqs  map[string][]byte
	order []string
}

// LoadFASTA reads a FASTA genome. Gzipped files are detected by their
// magic bytes.
func LoadFASTA(path string) (*FASTASource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
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

	src, err := ReadFASTA(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return src, nil
}

// ReadFASTA parses FASTA records from r. Records are keyed by the first
// word of their header; a repeated ID fails.
func ReadFASTA(r io.Reader) (*FASTASource, error) {
	src := &FASTASource{seqs: make(map[string][]byte)}

	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence type %T", sc.Seq())
		}
		id := s.Name()
		if _, dup := src.seqs[id]; dup {
			return nil, fmt.Errorf("duplicate FASTA record %q", id)
		}
		src.seqs[id] = bytes.ToUpper(alphabet.LettersToBytes(s.Seq))
		src.order = append(src.order, id)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	return src, nil
}

// Chromosomes returns record IDs in file order.
func (s *FASTASource) Chromosomes() []string {
	return s.order
}

// Len returns the length of chrom.
func (s *FASTASource) Len(chrom string) (int64, bool) {
	seq, ok := s.seqs[chrom]
	return int64(len(seq)), ok
}

// FetchSequence returns the bases of [start, end) on chrom.
func (s *FASTASource) FetchSequence(chrom string, start, end int64) (string, error) {
	seq, ok := s.seqs[chrom]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChrom, chrom)
	}
	if start < 0 || end < start || end > int64(len(seq)) {
		return "", fmt.Errorf("%w: %s:%d-%d (length %d)", ErrRange, chrom, start, end, len(seq))
	}
	return string(seq[start:end]), nil
}

// RegionSequences fetches the sequence of every row of t, in row order.
func RegionSequences(src Source, t *region.Table) ([]string, error) {
	out := make([]string, t.Len())
	for i, r := range t.All() {
		seq, err := src.FetchSequence(r.Chrom, r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = seq
	}
	return out, nil
}
