package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/duckdb"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and query annotated region tables in DuckDB",
		Long:  "Store annotated region tables in a DuckDB file (archive.path) and query them by dataset, annotation, or coordinates.",
	}
	cmd.PersistentFlags().String("db", "", "Archive file (default: archive.path)")
	viper.BindPFlag("archive.path", cmd.PersistentFlags().Lookup("db"))

	cmd.AddCommand(newArchiveWriteCmd())
	cmd.AddCommand(newArchiveLookupCmd())
	cmd.AddCommand(newArchiveListCmd())
	cmd.AddCommand(newArchiveDeleteCmd())
	return cmd
}

func openArchive() (*duckdb.Store, error) {
	path := viper.GetString("archive.path")
	s, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened archive", zap.String("path", path))
	return s, nil
}

func newArchiveWriteCmd() *cobra.Command {
	var (
		schema string
		name   string
		stats  []string
		tracks []string
		masks  []string
	)

	cmd := &cobra.Command{
		Use:   "write <regions>",
		Short: "Archive a region file and its annotations as a dataset",
		Long:  "Archive a region file with its annotations under --name, replacing any dataset of that name.",
		Example: `  regiontools archive write -s bed6 --name k562 --stat counts=counts.npy --track profile=tracks.npz peaks.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return usagef("--name is required")
			}
			kinds := []struct {
				flag   string
				values []string
				kind   anno.Kind
			}{
				{"stat", stats, anno.KindStat},
				{"track", tracks, anno.KindTrack},
				{"mask", masks, anno.KindMask},
			}

			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			store := newStore(t)
			for _, k := range kinds {
				files, err := parseNamedFiles(k.flag, k.values)
				if err != nil {
					return err
				}
				if err := loadNamedFiles(store, files, k.kind); err != nil {
					return err
				}
			}

			db, err := openArchive()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.WriteDataset(name, store); err != nil {
				return fmt.Errorf("archive %s: %w", name, err)
			}
			logger.Info("archived dataset",
				zap.String("dataset", name),
				zap.Int("rows", t.Len()),
				zap.Strings("annotations", store.Names()))
			return nil
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&name, "name", "", "Dataset name")
	cmd.Flags().StringArrayVar(&stats, "stat", nil, "Stat annotation as NAME=PATH (repeatable)")
	cmd.Flags().StringArrayVar(&tracks, "track", nil, "Track annotation as NAME=PATH (repeatable)")
	cmd.Flags().StringArrayVar(&masks, "mask", nil, "Mask annotation as NAME=PATH (repeatable)")

	return cmd
}

func newArchiveLookupCmd() *cobra.Command {
	var (
		name       string
		annotation string
		locus      string
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print archived stats of a dataset",
		Long: `Print one archived stat annotation per row (--annotation), or the stat and
mask values of every row overlapping --region chrom:start-end.`,
		Example: `  regiontools archive lookup --name k562 --annotation counts
  regiontools archive lookup --name k562 --region chr1:1000000-2000000`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return usagef("--name is required")
			}
			if (annotation == "") == (locus == "") {
				return usagef("give exactly one of --annotation or --region")
			}

			db, err := openArchive()
			if err != nil {
				return err
			}
			defer db.Close()

			if annotation != "" {
				values, err := db.LookupStat(name, annotation)
				if err != nil {
					return err
				}
				return printStat(cmd.OutOrStdout(), values)
			}

			chrom, start, end, err := parseLocus(locus)
			if err != nil {
				return err
			}
			hits, err := db.Overlapping(name, chrom, start, end)
			if err != nil {
				return err
			}
			return printOverlaps(cmd.OutOrStdout(), hits)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dataset name")
	cmd.Flags().StringVar(&annotation, "annotation", "", "Stat or mask annotation to print")
	cmd.Flags().StringVar(&locus, "region", "", "Print rows overlapping chrom:start-end")

	return cmd
}

func newArchiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived datasets",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive()
			if err != nil {
				return err
			}
			defer db.Close()

			datasets, err := db.Datasets()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATASET\tSCHEMA\tROWS")
			for _, d := range datasets {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", d.Name, d.Schema, d.Rows)
			}
			return tw.Flush()
		},
	}
}

func newArchiveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <dataset>",
		Short: "Remove an archived dataset",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.DeleteDataset(args[0])
		},
	}
}

// parseLocus parses chrom:start-end.
func parseLocus(s string) (string, int64, int64, error) {
	chrom, span, ok := strings.Cut(s, ":")
	if !ok || chrom == "" {
		return "", 0, 0, usagef("invalid region %q: expected chrom:start-end", s)
	}
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		return "", 0, 0, usagef("invalid region %q: expected chrom:start-end", s)
	}
	start, err := strconv.ParseInt(from, 10, 64)
	if err != nil {
		return "", 0, 0, usagef("invalid region start %q", from)
	}
	end, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return "", 0, 0, usagef("invalid region end %q", to)
	}
	if start >= end {
		return "", 0, 0, usagef("invalid region %q: start must be less than end", s)
	}
	return chrom, start, end, nil
}

func printStat(w io.Writer, values []float64) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

func printOverlaps(w io.Writer, hits []duckdb.Overlap) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, h := range hits {
		keys := make([]string, 0, len(h.Stats))
		for k := range h.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := []string{strconv.FormatInt(h.Row, 10), h.ID(), h.Strand, h.Name}
		for _, k := range keys {
			fields = append(fields, k+"="+strconv.FormatFloat(h.Stats[k], 'g', -1, 64))
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	return tw.Flush()
}
