package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/inodb/regiontools/internal/region"
	"github.com/inodb/regiontools/internal/sequence"
)

// FASTAWidth is the line width of exported sequences.
const FASTAWidth = 60

// WriteFASTA writes the sequence of every row of t, headed >chrom:start-end.
func WriteFASTA(w io.Writer, t *region.Table, src sequence.Source) error {
	bw := bufio.NewWriter(w)
	fw := fasta.NewWriter(bw, FASTAWidth)
	for i, r := range t.All() {
		s, err := src.FetchSequence(r.Chrom, r.Start, r.End)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		rec := linear.NewSeq(r.ID(), alphabet.BytesToLetters([]byte(s)), alphabet.DNAredundant)
		if _, err := fw.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", r.ID(), err)
		}
	}
	return bw.Flush()
}
