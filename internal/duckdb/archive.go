package duckdb

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
)

// Dataset describes an archived region table.
type Dataset struct {
	Name   string
	Schema string
	Rows   int64
}

// Overlap is an archived row overlapping a queried interval, with its stat
// and mask annotations.
type Overlap struct {
	Row    int64
	Chrom  string
	Start  int64
	End    int64
	Strand string
	Name   string
	Stats  map[string]float64
}

// ID returns chrom:start-end.
func (o Overlap) ID() string {
	return fmt.Sprintf("%s:%d-%d", o.Chrom, o.Start, o.End)
}

// WriteDataset archives the table of s and all of its annotations under
// name, replacing any dataset of the same name. Rows and annotations are
// batch-inserted with the Appender API. A failed write leaves no trace of
// name in the archive.
func (s *Store) WriteDataset(name string, st *anno.Store) error {
	if err := s.DeleteDataset(name); err != nil {
		return err
	}
	if err := s.writeDataset(name, st); err != nil {
		if cleanupErr := s.DeleteDataset(name); cleanupErr != nil {
			return errors.Join(err, cleanupErr)
		}
		return err
	}
	return nil
}

func (s *Store) writeDataset(name string, st *anno.Store) error {

	t := st.Table()
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return fmt.Errorf("serialize regions: %w", err)
	}
	records := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	if _, err := s.db.Exec(`INSERT INTO datasets VALUES (?, ?, ?)`,
		name, t.Schema().Name, int64(t.Len())); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	err := s.appendRows("regions", func(a *goduckdb.Appender) error {
		for i, r := range t.All() {
			rowName, _ := r.Name()
			if err := a.AppendRow(name, int64(i), r.Chrom, r.Start, r.End, r.Strand().String(), rowName, records[i]); err != nil {
				return fmt.Errorf("append region %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, annoName := range st.Names() {
		if err := s.writeAnnotation(name, annoName, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeAnnotation(dataset, name string, st *anno.Store) error {
	a, err := st.Get(name)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`INSERT INTO annotations VALUES (?, ?, ?)`, dataset, name, a.Kind.String()); err != nil {
		return fmt.Errorf("insert annotation %s: %w", name, err)
	}

	switch a.Kind {
	case anno.KindStat, anno.KindMask:
		values := a.Stat
		if a.Kind == anno.KindMask {
			values = make([]float64, len(a.Mask))
			for i, keep := range a.Mask {
				if keep {
					values[i] = 1
				}
			}
		}
		return s.appendRows("stat_values", func(ap *goduckdb.Appender) error {
			for i, v := range values {
				if err := ap.AppendRow(dataset, name, int64(i), v); err != nil {
					return fmt.Errorf("append %s row %d: %w", name, i, err)
				}
			}
			return nil
		})

	case anno.KindTrack:
		return s.appendRows("track_values", func(ap *goduckdb.Appender) error {
			for i, row := range a.Track {
				for pos, v := range row {
					if err := ap.AppendRow(dataset, name, int64(i), int64(pos), v); err != nil {
						return fmt.Errorf("append %s row %d: %w", name, i, err)
					}
				}
			}
			return nil
		})
	}
	return fmt.Errorf("unknown annotation kind %v", a.Kind)
}

// appendRows runs fn against an Appender on table and flushes it.
func (s *Store) appendRows(table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// DeleteDataset removes an archived dataset. Missing datasets are ignored.
func (s *Store) DeleteDataset(name string) error {
	for _, table := range []string{"track_values", "stat_values", "annotations", "regions", "datasets"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE dataset=?", name); err != nil {
			return fmt.Errorf("delete %s from %s: %w", name, table, err)
		}
	}
	return nil
}

// Datasets lists archived datasets by name.
func (s *Store) Datasets() ([]Dataset, error) {
	rows, err := s.db.Query(`SELECT dataset, schema_name, row_count FROM datasets ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.Name, &d.Schema, &d.Rows); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return out, nil
}

func (s *Store) dataset(name string) (Dataset, error) {
	d := Dataset{Name: name}
	err := s.db.QueryRow(`SELECT schema_name, row_count FROM datasets WHERE dataset=?`, name).
		Scan(&d.Schema, &d.Rows)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %q: %w", name, err)
	}
	return d, nil
}

// LoadDataset rebuilds the region table and annotations of an archived
// dataset.
func (s *Store) LoadDataset(name string) (*anno.Store, error) {
	d, err := s.dataset(name)
	if err != nil {
		return nil, err
	}
	schema, err := region.SchemaByName(d.Schema)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT record FROM regions WHERE dataset=? ORDER BY row_idx`, name)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	var records []string
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan region: %w", err)
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regions: %w", err)
	}

	t, err := region.Read(strings.NewReader(strings.Join(records, "\n")), schema)
	if err != nil {
		return nil, fmt.Errorf("rebuild regions: %w", err)
	}
	st := anno.NewStore(t)

	kinds, err := s.annotationKinds(name)
	if err != nil {
		return nil, err
	}
	for annoName, kind := range kinds {
		if err := s.loadAnnotation(st, name, annoName, kind); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *Store) loadAnnotation(st *anno.Store, dataset, name string, kind anno.Kind) error {
	switch kind {
	case anno.KindStat:
		v, err := s.LookupStat(dataset, name)
		if err != nil {
			return err
		}
		return st.LoadFromArray(name, v)
	case anno.KindMask:
		v, err := s.LookupStat(dataset, name)
		if err != nil {
			return err
		}
		mask := make([]bool, len(v))
		for i, x := range v {
			mask[i] = x != 0
		}
		return st.LoadMask(name, mask)
	case anno.KindTrack:
		tracks, err := s.LookupTrack(dataset, name)
		if err != nil {
			return err
		}
		return st.LoadFromTrackList(name, tracks)
	}
	return fmt.Errorf("unknown annotation kind %v", kind)
}

func (s *Store) annotationKind(dataset, name string) (anno.Kind, error) {
	var kind string
	err := s.db.QueryRow(`SELECT kind FROM annotations WHERE dataset=? AND annotation=?`, dataset, name).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s.%s", anno.ErrNotFound, dataset, name)
	}
	if err != nil {
		return 0, fmt.Errorf("query annotation %s.%s: %w", dataset, name, err)
	}
	return anno.ParseKind(kind)
}

func (s *Store) annotationKinds(dataset string) (map[string]anno.Kind, error) {
	rows, err := s.db.Query(`SELECT annotation, kind FROM annotations WHERE dataset=?`, dataset)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]anno.Kind)
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		k, err := anno.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		out[name] = k
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}
	return out, nil
}

// LookupStat returns the archived stat (or 0/1 mask) values of a dataset in
// row order.
func (s *Store) LookupStat(dataset, annotation string) ([]float64, error) {
	d, err := s.dataset(dataset)
	if err != nil {
		return nil, err
	}
	kind, err := s.annotationKind(dataset, annotation)
	if err != nil {
		return nil, err
	}
	if kind == anno.KindTrack {
		return nil, fmt.Errorf("%w: %s.%s is a track", anno.ErrKind, dataset, annotation)
	}
	rows, err := s.db.Query(`SELECT row_idx, value FROM stat_values
		WHERE dataset=? AND annotation=? ORDER BY row_idx`, dataset, annotation)
	if err != nil {
		return nil, fmt.Errorf("query stat: %w", err)
	}
	defer rows.Close()

	out := make([]float64, 0, d.Rows)
	for rows.Next() {
		var idx int64
		var v float64
		if err := rows.Scan(&idx, &v); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stat: %w", err)
	}
	if int64(len(out)) != d.Rows {
		return nil, fmt.Errorf("%w: %s.%s has %d values for %d rows", anno.ErrCardinality, dataset, annotation, len(out), d.Rows)
	}
	return out, nil
}

// LookupTrack returns the archived track values of a dataset in row order.
func (s *Store) LookupTrack(dataset, annotation string) ([][]float64, error) {
	d, err := s.dataset(dataset)
	if err != nil {
		return nil, err
	}
	kind, err := s.annotationKind(dataset, annotation)
	if err != nil {
		return nil, err
	}
	if kind != anno.KindTrack {
		return nil, fmt.Errorf("%w: %s.%s is a %s", anno.ErrKind, dataset, annotation, kind)
	}
	rows, err := s.db.Query(`SELECT row_idx, value FROM track_values
		WHERE dataset=? AND annotation=? ORDER BY row_idx, pos`, dataset, annotation)
	if err != nil {
		return nil, fmt.Errorf("query track: %w", err)
	}
	defer rows.Close()

	out := make([][]float64, d.Rows)
	for rows.Next() {
		var idx int64
		var v float64
		if err := rows.Scan(&idx, &v); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		if idx < 0 || idx >= d.Rows {
			return nil, fmt.Errorf("%w: %s.%s row %d outside %d rows", anno.ErrCardinality, dataset, annotation, idx, d.Rows)
		}
		out[idx] = append(out[idx], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate track: %w", err)
	}
	return out, nil
}

// Overlapping returns the rows of a dataset overlapping [start, end) on
// chrom, in row order, with their stat and mask values.
func (s *Store) Overlapping(dataset, chrom string, start, end int64) ([]Overlap, error) {
	rows, err := s.db.Query(`SELECT r.row_idx, r.chrom, r.start_pos, r.end_pos, r.strand, r.name,
		v.annotation, v.value
		FROM regions r
		LEFT JOIN stat_values v ON v.dataset = r.dataset AND v.row_idx = r.row_idx
		WHERE r.dataset=? AND r.chrom=? AND r.start_pos < ? AND r.end_pos > ?
		ORDER BY r.row_idx, v.annotation`, dataset, chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("query overlaps: %w", err)
	}
	defer rows.Close()

	var out []Overlap
	for rows.Next() {
		var o Overlap
		var annotation *string
		var value *float64
		if err := rows.Scan(&o.Row, &o.Chrom, &o.Start, &o.End, &o.Strand, &o.Name, &annotation, &value); err != nil {
			return nil, fmt.Errorf("scan overlap: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].Row != o.Row {
			o.Stats = make(map[string]float64)
			out = append(out, o)
		}
		if annotation != nil && value != nil {
			out[len(out)-1].Stats[*annotation] = *value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overlaps: %w", err)
	}
	return out, nil
}
