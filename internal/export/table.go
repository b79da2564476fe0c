// Package export writes region tables and their annotations in
// human-facing formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
)

// IDColumn names the region identifier column of a count table frame.
// Written CSV leaves this header cell empty, like an unnamed pandas index.
const IDColumn = "region_id"

// IDType selects how rows are labelled in exports.
type IDType int

const (
	// IDDefault labels rows chrom:start-end.
	IDDefault IDType = iota
	// IDGeneSymbol labels rows by their gene_symbol field.
	IDGeneSymbol
)

// ParseIDType parses "default" or "gene_symbol".
func ParseIDType(s string) (IDType, error) {
	switch s {
	case "default":
		return IDDefault, nil
	case "gene_symbol":
		return IDGeneSymbol, nil
	default:
		return 0, fmt.Errorf("unknown region id type %q (default, gene_symbol)", s)
	}
}

// RegionIDs labels every row of t.
func RegionIDs(t *region.Table, idType IDType) ([]string, error) {
	ids := make([]string, t.Len())
	for i, r := range t.All() {
		switch idType {
		case IDDefault:
			ids[i] = r.ID()
		case IDGeneSymbol:
			sym, err := r.GeneSymbol()
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			ids[i] = sym
		default:
			return nil, fmt.Errorf("unknown region id type %d", idType)
		}
	}
	return ids, nil
}

// CountTable builds a data frame with one row per region and one column per
// named stat annotation.
func CountTable(s *anno.Store, samples []string, idType IDType) (dataframe.DataFrame, error) {
	ids, err := RegionIDs(s.Table(), idType)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	cols := []series.Series{series.New(ids, series.String, IDColumn)}
	seen := map[string]bool{IDColumn: true}
	for _, name := range samples {
		if seen[name] {
			return dataframe.DataFrame{}, fmt.Errorf("duplicate count table column %q", name)
		}
		seen[name] = true

		stat, err := s.Stat(name)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		cols = append(cols, series.New(stat, series.Float, name))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build count table: %w", df.Err)
	}
	return df, nil
}

// WriteCountTable writes the count table of the named stats as CSV. The
// identifier column header is left empty.
func WriteCountTable(w io.Writer, s *anno.Store, samples []string, idType IDType) error {
	df, err := CountTable(s, samples, idType)
	if err != nil {
		return err
	}
	records := df.Records()
	records[0][0] = ""
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write count table: %w", err)
	}
	return nil
}
