package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/regiontools/internal/region"
)

// ChromSizes maps chromosome name to length.
type ChromSizes map[string]int64

// LoadChromSizes reads a two-column chrom.sizes file.
func LoadChromSizes(path string) (ChromSizes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chrom sizes: %w", err)
	}
	defer f.Close()

	sizes, err := ReadChromSizes(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sizes, nil
}

// ReadChromSizes parses "chrom<TAB>size" lines.
func ReadChromSizes(r io.Reader) (ChromSizes, error) {
	sizes := make(ChromSizes)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected chrom and size", line)
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid size %q", line, fields[1])
		}
		sizes[fields[0]] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chrom sizes: %w", err)
	}
	return sizes, nil
}

// FilterChroms keeps the rows of t whose chromosome is listed in sizes.
func FilterChroms(t *region.Table, sizes ChromSizes) (*region.Table, error) {
	chroms := t.ChromNames()
	mask := make([]bool, len(chroms))
	for i, c := range chroms {
		_, mask[i] = sizes[c]
	}
	return t.ApplyLogicalFilter(mask)
}
