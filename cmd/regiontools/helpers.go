package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/region"
)

// addSchemaFlag registers --schema on cmd.
func addSchemaFlag(cmd *cobra.Command, schema *string) {
	cmd.Flags().StringVarP(schema, "schema", "s", "bed6",
		"Region file type: "+strings.Join(region.SchemaNames(), ", "))
}

// loadRegions loads a region file under the named schema.
func loadRegions(path, schemaName string) (*region.Table, error) {
	schema, err := region.SchemaByName(schemaName)
	if err != nil {
		return nil, &usageError{err: err}
	}
	t, err := region.Load(path, schema)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded regions",
		zap.String("path", path),
		zap.String("schema", schema.Name),
		zap.Int("rows", t.Len()))
	return t, nil
}

// newStore wraps t in an annotation store logging to the command logger.
func newStore(t *region.Table) *anno.Store {
	s := anno.NewStore(t)
	s.SetLogger(logger)
	return s
}

// writeRegions writes t to path, or to the command output when path is
// empty or "-".
func writeRegions(cmd *cobra.Command, t *region.Table, path string) error {
	if path == "" || path == "-" {
		return t.Write(cmd.OutOrStdout())
	}
	if err := t.WriteFile(path); err != nil {
		return err
	}
	logger.Info("wrote regions", zap.String("path", path), zap.Int("rows", t.Len()))
	return nil
}

// namedFile is a NAME=PATH command-line pair.
type namedFile struct {
	Name string
	Path string
}

func parseNamedFiles(flag string, values []string) ([]namedFile, error) {
	out := make([]namedFile, 0, len(values))
	for _, v := range values {
		name, path, ok := strings.Cut(v, "=")
		if !ok || name == "" || path == "" {
			return nil, usagef("--%s %q: expected NAME=PATH", flag, v)
		}
		out = append(out, namedFile{Name: name, Path: path})
	}
	return out, nil
}

// loadNamedFiles loads every pair into s as annotations of the given kind.
func loadNamedFiles(s *anno.Store, files []namedFile, kind anno.Kind) error {
	for _, f := range files {
		if err := s.LoadFromFile(f.Name, f.Path, kind); err != nil {
			return err
		}
	}
	return nil
}

// saveAnnotation writes the named annotation and logs the output path.
func saveAnnotation(s *anno.Store, name, path string) error {
	if err := s.Save(name, path); err != nil {
		return err
	}
	logger.Info("saved annotation", zap.String("annotation", name), zap.String("path", path))
	return nil
}

func workers() int {
	return viper.GetInt("workers")
}

func checkAnnotationExt(path string) error {
	if !strings.HasSuffix(path, ".npy") && !strings.HasSuffix(path, ".npz") {
		return usagef("output %q must end in .npy or .npz", path)
	}
	return nil
}

// outputFile opens path for writing, or returns the command output when
// path is empty or "-". The returned close function is always non-nil.
func outputFile(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
