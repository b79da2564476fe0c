package region

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a tab-separated, headerless region file. Gzipped files are
// detected by their magic bytes.
func Load(path string, schema *Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
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

	t, err := read(r, schema, path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Read parses region rows from r.
func Read(r io.Reader, schema *Schema) (*Table, error) {
	return read(r, schema, "")
}

func read(r io.Reader, schema *Schema, path string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	t := NewTable(schema)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		reg, err := parseFields(schema, strings.Split(text, "\t"))
		if err != nil {
			return nil, &FormatError{Path: path, Line: line, Message: err.Error()}
		}
		t.rows = append(t.rows, reg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan region file: %w", err)
	}
	return t, nil
}

// Write serializes rows in table order using the schema column order,
// tab-separated, without a header.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range t.rows {
		if _, err := bw.WriteString(strings.Join(r.fields(), "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the table to path.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create region file: %w", err)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write region file: %w", err)
	}
	return f.Close()
}
