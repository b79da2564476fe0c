package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/regiontools/internal/anno"
	"github.com/inodb/regiontools/internal/export"
	"github.com/inodb/regiontools/internal/sequence"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export regions and annotations for downstream tools",
	}
	cmd.AddCommand(newExportCountTableCmd())
	cmd.AddCommand(newExportFASTACmd())
	cmd.AddCommand(newExportChromFilterCmd())
	return cmd
}

func newExportCountTableCmd() *cobra.Command {
	var (
		schema  string
		samples []string
		idType  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "count-table <regions>",
		Short: "Write stat annotations as a CSV count table",
		Long: `Write one CSV row per region and one column per --sample. Rows are named
chrom:start-end, or by gene symbol with --id-type gene_symbol (bed6gene).`,
		Example: `  regiontools export count-table -s bed6gene --sample ctrl=ctrl.npy --sample kd=kd.npy --id-type gene_symbol genes.bed`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := export.ParseIDType(idType)
			if err != nil {
				return &usageError{err: err}
			}
			files, err := parseNamedFiles("sample", samples)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return usagef("at least one --sample is required")
			}

			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			store := newStore(t)
			if err := loadNamedFiles(store, files, anno.KindStat); err != nil {
				return err
			}
			names := make([]string, len(files))
			for i, f := range files {
				names[i] = f.Name
			}

			w, closeFn, err := outputFile(cmd, output)
			if err != nil {
				return err
			}
			if err := export.WriteCountTable(w, store, names, id); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringArrayVar(&samples, "sample", nil, "Stat annotation column as NAME=PATH (repeatable)")
	cmd.Flags().StringVar(&idType, "id-type", "default", "Row ids: default (chrom:start-end), gene_symbol")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (default: stdout)")

	return cmd
}

func newExportFASTACmd() *cobra.Command {
	var (
		schema string
		genome string
		output string
	)

	cmd := &cobra.Command{
		Use:     "fasta <regions>",
		Short:   "Write the genome sequence of every region as FASTA",
		Example: `  regiontools export fasta -s bed3 --genome hg38.fa -o peaks.fa peaks.bed`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if genome == "" {
				return usagef("--genome is required")
			}
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			src, err := sequence.LoadFASTA(genome)
			if err != nil {
				return err
			}

			w, closeFn, err := outputFile(cmd, output)
			if err != nil {
				return err
			}
			if err := export.WriteFASTA(w, t, src); err != nil {
				closeFn()
				return fmt.Errorf("export fasta: %w", err)
			}
			return closeFn()
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVar(&genome, "genome", "", "Genome FASTA (optionally gzipped)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output FASTA file (default: stdout)")

	return cmd
}

func newExportChromFilterCmd() *cobra.Command {
	var (
		schema string
		output string
	)

	cmd := &cobra.Command{
		Use:     "chrom-filter <regions> <chrom.sizes>",
		Short:   "Drop regions on chromosomes missing from a chrom.sizes file",
		Example: `  regiontools export chrom-filter -s bed6 peaks.bed hg38.chrom.sizes > main_chroms.bed`,
		Args:    usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadRegions(args[0], schema)
			if err != nil {
				return err
			}
			sizes, err := export.LoadChromSizes(args[1])
			if err != nil {
				return err
			}
			filtered, err := export.FilterChroms(t, sizes)
			if err != nil {
				return err
			}
			return writeRegions(cmd, filtered, output)
		},
	}

	addSchemaFlag(cmd, &schema)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output region file (default: stdout)")

	return cmd
}
