// Package motif scores sequences against position weight matrix motifs.
package motif

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLengthMismatch reports a scoring window whose length differs from
	// the motif width.
	ErrLengthMismatch = errors.New("window length does not match motif width")
	// ErrUnknownBase reports a sequence character outside the motif alphabet.
	ErrUnknownBase = errors.New("base not in motif alphabet")
)

// UnknownBase is the symbol appended to the alphabet when sequences contain
// unresolved bases.
const UnknownBase = 'N'

// Model is a position weight matrix motif.
type Model struct {
	Name     string
	Alphabet string
	// PWM holds one probability distribution over Alphabet per position.
	PWM        [][]float64
	NumSites   int
	Background []float64 // aligned to Alphabet; nil when not supplied
}

// Width returns the number of motif positions.
func (m *Model) Width() int {
	return len(m.PWM)
}

// Index returns the alphabet index of base, or -1.
func (m *Model) Index(base byte) int {
	return strings.IndexByte(m.Alphabet, base)
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	out := &Model{
		Name:     m.Name,
		Alphabet: m.Alphabet,
		PWM:      make([][]float64, len(m.PWM)),
		NumSites: m.NumSites,
	}
	for i, row := range m.PWM {
		out.PWM[i] = append([]float64(nil), row...)
	}
	if m.Background != nil {
		out.Background = append([]float64(nil), m.Background...)
	}
	return out
}

// Validate checks that every PWM row spans the alphabet.
func (m *Model) Validate() error {
	if m.Width() == 0 {
		return fmt.Errorf("motif %s has no positions", m.Name)
	}
	for i, row := range m.PWM {
		if len(row) != len(m.Alphabet) {
			return fmt.Errorf("motif %s position %d has %d columns, alphabet %q has %d",
				m.Name, i, len(row), m.Alphabet, len(m.Alphabet))
		}
	}
	if m.Background != nil && len(m.Background) != len(m.Alphabet) {
		return fmt.Errorf("motif %s background has %d values, alphabet %q has %d",
			m.Name, len(m.Background), m.Alphabet, len(m.Alphabet))
	}
	return nil
}

// WithUnknownBase returns a copy of m with UnknownBase appended to the
// alphabet and a zero probability column added to the PWM. A supplied
// background gets a zero entry. m is returned unchanged if the alphabet
// already holds the symbol.
func (m *Model) WithUnknownBase() *Model {
	if m.Index(UnknownBase) >= 0 {
		return m
	}
	out := m.Clone()
	out.Alphabet += string(UnknownBase)
	for i := range out.PWM {
		out.PWM[i] = append(out.PWM[i], 0)
	}
	if out.Background != nil {
		out.Background = append(out.Background, 0)
	}
	return out
}

// Pseudocount returns a copy of m with the PWM re-estimated from its
// source sites as (p*n + 1) / (n + len(alphabet)).
func (m *Model) Pseudocount() *Model {
	out := m.Clone()
	n := float64(m.NumSites)
	k := float64(len(m.Alphabet))
	for _, row := range out.PWM {
		for j, p := range row {
			row[j] = (p*n + 1) / (n + k)
		}
	}
	return out
}
