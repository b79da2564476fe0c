package motif

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultAlphabet is used when a MEME file declares no alphabet.
const DefaultAlphabet = "ACGT"

// ParseError represents an error during MEME parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("meme parse error at line %d: %s", e.Line, e.Message)
}

// LoadMEME reads all motifs from a MEME format file.
func LoadMEME(path string) ([]*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open motif file: %w", err)
	}
	defer f.Close()

	models, err := ParseMEME(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return models, nil
}

// ParseMEME reads motifs in MEME minimal format. Every motif carries the
// file's alphabet and background letter frequencies.
func ParseMEME(r io.Reader) ([]*Model, error) {
	p := &memeParser{scanner: bufio.NewScanner(r), alphabet: DefaultAlphabet}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	return p.parse()
}

type memeParser struct {
	scanner    *bufio.Scanner
	line       int
	alphabet   string
	background map[byte]float64
	models     []*Model
	current    *Model
	pending    bool // reading matrix rows of current
	width      int
}

func (p *memeParser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Message: fmt.Sprintf(format, args...)}
}

func (p *memeParser) parse() ([]*Model, error) {
	inBackground := false
	var seenVersion bool

	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())

		if p.pending {
			done, err := p.matrixRow(text)
			if err != nil {
				return nil, err
			}
			if !done {
				continue
			}
		}

		switch {
		case text == "":
			inBackground = false
		case strings.HasPrefix(text, "MEME version"):
			seenVersion = true
		case strings.HasPrefix(text, "ALPHABET="):
			p.alphabet = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(text, "ALPHABET=")))
			if p.alphabet == "" {
				return nil, p.errorf("empty alphabet")
			}
		case strings.HasPrefix(text, "Background letter frequencies"):
			inBackground = true
			p.background = make(map[byte]float64)
		case strings.HasPrefix(text, "MOTIF"):
			inBackground = false
			fields := strings.Fields(text)
			if len(fields) < 2 {
				return nil, p.errorf("MOTIF line without a name")
			}
			if err := p.finish(); err != nil {
				return nil, err
			}
			p.current = &Model{Name: fields[1]}
		case strings.HasPrefix(text, "letter-probability matrix"):
			if err := p.matrixHeader(text); err != nil {
				return nil, err
			}
		case inBackground:
			if err := p.backgroundLine(text); err != nil {
				return nil, err
			}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan motif file: %w", err)
	}
	if !seenVersion {
		return nil, p.errorf("missing MEME version line")
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.models, nil
}

func (p *memeParser) backgroundLine(text string) error {
	fields := strings.Fields(text)
	if len(fields)%2 != 0 {
		return p.errorf("malformed background frequencies %q", text)
	}
	for i := 0; i < len(fields); i += 2 {
		if len(fields[i]) != 1 {
			return p.errorf("invalid background letter %q", fields[i])
		}
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return p.errorf("invalid background frequency %q", fields[i+1])
		}
		p.background[strings.ToUpper(fields[i])[0]] = v
	}
	return nil
}

// matrixHeader parses "letter-probability matrix: alength= 4 w= 19 nsites= 17 E= 4.1e-009".
func (p *memeParser) matrixHeader(text string) error {
	if p.current == nil {
		return p.errorf("letter-probability matrix outside a MOTIF block")
	}
	_, rest, _ := strings.Cut(text, ":")
	fields := strings.Fields(strings.ReplaceAll(rest, "=", "= "))
	p.width = -1
	for i := 0; i+1 < len(fields); i++ {
		key := fields[i]
		val := fields[i+1]
		switch key {
		case "alength=":
			n, err := strconv.Atoi(val)
			if err != nil || n != len(p.alphabet) {
				return p.errorf("alength %s does not match alphabet %q", val, p.alphabet)
			}
		case "w=":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return p.errorf("invalid motif width %q", val)
			}
			p.width = n
		case "nsites=":
			n, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return p.errorf("invalid nsites %q", val)
			}
			p.current.NumSites = int(n)
		}
	}
	p.pending = true
	return nil
}

// matrixRow consumes one probability row. It reports done when the line
// ends the matrix and must be interpreted by the caller.
func (p *memeParser) matrixRow(text string) (bool, error) {
	if p.width > 0 && len(p.current.PWM) == p.width {
		p.pending = false
		return true, nil
	}
	if text == "" {
		if len(p.current.PWM) == 0 {
			return false, nil
		}
		p.pending = false
		return true, nil
	}
	fields := strings.Fields(text)
	if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
		// width undeclared: first non-numeric line ends the matrix
		p.pending = false
		return true, nil
	}
	if len(fields) != len(p.alphabet) {
		return false, p.errorf("matrix row has %d columns, alphabet %q has %d", len(fields), p.alphabet, len(p.alphabet))
	}
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return false, p.errorf("invalid probability %q", f)
		}
		row[i] = v
	}
	p.current.PWM = append(p.current.PWM, row)
	return false, nil
}

func (p *memeParser) finish() error {
	if p.current == nil {
		return nil
	}
	m := p.current
	p.current = nil
	p.pending = false

	if len(m.PWM) == 0 {
		return p.errorf("motif %s has no letter-probability matrix", m.Name)
	}
	if p.width > 0 && len(m.PWM) != p.width {
		return p.errorf("motif %s declares width %d but has %d rows", m.Name, p.width, len(m.PWM))
	}
	m.Alphabet = p.alphabet
	if p.background != nil {
		m.Background = make([]float64, len(p.alphabet))
		for i := range len(p.alphabet) {
			m.Background[i] = p.background[p.alphabet[i]]
		}
	}
	p.models = append(p.models, m)
	return nil
}
