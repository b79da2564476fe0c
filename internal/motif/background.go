package motif

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// BackgroundMode selects the sequences counted for the minus strand
// background.
type BackgroundMode int

const (
	// BackgroundForward counts the batch as given for both strands.
	BackgroundForward BackgroundMode = iota
	// BackgroundReverseComplement counts the reverse-complemented batch
	// for the minus strand.
	BackgroundReverseComplement
)

func (b BackgroundMode) String() string {
	if b == BackgroundReverseComplement {
		return "reverse-complement"
	}
	return "forward"
}

// EstimateBackground returns the per-letter frequency of alphabet across
// the concatenation of seqs. Characters outside the alphabet are ignored.
func EstimateBackground(seqs []string, alphabet string) ([]float64, error) {
	counts := make([]float64, len(alphabet))
	for _, s := range seqs {
		for i := range len(s) {
			if idx := strings.IndexByte(alphabet, upper(s[i])); idx >= 0 {
				counts[idx]++
			}
		}
	}
	total := floats.Sum(counts)
	if total == 0 {
		return nil, fmt.Errorf("estimate background: no %s bases in %d sequences", alphabet, len(seqs))
	}
	floats.Scale(1/total, counts)
	return counts, nil
}

// ContainsUnknownBase reports whether any sequence holds UnknownBase.
func ContainsUnknownBase(seqs []string) bool {
	for _, s := range seqs {
		if strings.IndexFunc(s, func(r rune) bool { return r == UnknownBase || r == 'n' }) >= 0 {
			return true
		}
	}
	return false
}

func reverseComplementAll(seqs []string) []string {
	out := make([]string, len(seqs))
	for i, s := range seqs {
		out[i] = ReverseComplement(strings.ToUpper(s))
	}
	return out
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
